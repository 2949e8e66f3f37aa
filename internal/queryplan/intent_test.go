package queryplan

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		q    string
		want Intent
	}{
		{"How many times did I almost crash today?", IntentAlmostCrash},
		{"how many almost crashes last week?", IntentAlmostCrash},
		{"any near miss yesterday", IntentAlmostCrash},
		{"were there collision warnings?", IntentAlmostCrash},
		{"close call count", IntentAlmostCrash},

		{"Show me stuck intervals yesterday", IntentStuckIntervals},
		{"when was he stuck?", IntentStuckIntervals},
		{"show me where she was not moving", IntentStuckIntervals},

		{"How long was I stuck?", IntentStuckMinutes},
		{"was he stuck", IntentStuckMinutes},
		{"minutes not moving", IntentStuckMinutes},
		{"stationary time", IntentStuckMinutes},

		{"did he fall today?", IntentAccident},
		{"Did I have an accident yesterday?", IntentAccident},
		{"has she fallen or crashed", IntentAccident},
		{"any impact events", IntentAccident},

		{"top events", IntentEventCounts},
		{"give me a summary", IntentEventCounts},
		{"how many obstacles", IntentEventCounts},
		{"xyzzy", IntentEventCounts},
		{"", IntentEventCounts},
	}
	for _, tt := range tests {
		if got := Classify(tt.q); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.q, got, tt.want)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Earlier rules win when a question matches several.
	if got := Classify("near miss while stuck"); got != IntentAlmostCrash {
		t.Errorf("almost-crash tokens must beat stuck tokens, got %s", got)
	}
	// "collision warning" is an almost-crash phrase even though bare
	// "collision" is an accident token.
	if got := Classify("collision warning count"); got != IntentAlmostCrash {
		t.Errorf("collision warning must classify as almost_crash, got %s", got)
	}
	if got := Classify("stuck after the collision"); got != IntentStuckMinutes {
		t.Errorf("stuck tokens must beat accident tokens, got %s", got)
	}
}
