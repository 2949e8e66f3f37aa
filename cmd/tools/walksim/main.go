// Command walksim generates synthetic walk telemetry for exercising the
// service without a handset: a guidance tick per second with occasional
// obstacle bursts, an optional stuck episode and an optional accident
// pattern. Records are POSTed to the ingest endpoint, or written as
// JSON lines with -o for offline replay.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/guidelight-data/navwatch/internal/nav"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "navwatch base URL")
	clientID := flag.String("client", "sim-walker", "client id to emit")
	count := flag.Int("n", 300, "number of records")
	startT := flag.Int64("start", time.Now().Unix(), "first record t (unix seconds)")
	seed := flag.Int64("seed", 1, "random seed")
	output := flag.String("o", "", "write JSON lines to this file instead of posting")
	stuck := flag.Bool("stuck", true, "include a stuck episode")
	accident := flag.Bool("accident", false, "include an obstacle-stop-silence accident pattern")
	flag.Parse()

	sessionID := uuid.NewString()
	rng := rand.New(rand.NewSource(*seed))
	records := generateWalk(rng, *clientID, sessionID, *startT, *count, *stuck, *accident)

	if *output != "" {
		if err := writeJSONL(*output, records); err != nil {
			log.Fatalf("write %s: %v", *output, err)
		}
		log.Printf("wrote %d records to %s (session %s)", len(records), *output, sessionID)
		return
	}

	posted := 0
	for i := range records {
		if err := postRecord(*server, &records[i]); err != nil {
			log.Fatalf("post record %d: %v", i, err)
		}
		posted++
		if posted%100 == 0 {
			log.Printf("%d/%d records", posted, len(records))
		}
	}
	log.Printf("posted %d records for %s (session %s)", posted, *clientID, sessionID)
}

// generateWalk emits one record per second. The walk is mostly clear
// guidance with short obstacle bursts; the stuck episode sits in the
// middle third and the accident pattern, when enabled, ends the walk.
func generateWalk(rng *rand.Rand, clientID, sessionID string, startT int64, count int, stuck, accident bool) []nav.Record {
	records := make([]nav.Record, 0, count)

	stuckStart, stuckEnd := -1, -1
	if stuck && count >= 200 {
		stuckStart = count / 3
		stuckEnd = stuckStart + 150 // exceeds the 120s reporting floor
	}

	for i := 0; i < count; i++ {
		t := startT + int64(i)
		rec := nav.Record{
			RecordID:  uuid.NewString(),
			T:         t,
			ClientID:  clientID,
			SessionID: sessionID,
		}

		switch {
		case i >= stuckStart && i < stuckEnd:
			rec.Events = []string{"stop"}
			rec.Confidence = 0.9
			rec.FreeAheadM = depth(1.2 + rng.Float64()*0.02)

		case accident && i == count-40:
			// collision anchor: close obstacle at high confidence
			rec.Events = []string{"obstacle_close"}
			rec.Classes = []string{"pole"}
			rec.Confidence = 0.92
			rec.FreeAheadM = depth(0.3)

		case accident && i > count-40:
			// stop, then silence until the walk ends
			rec.Events = []string{"stop"}
			rec.Confidence = 0.9
			rec.FreeAheadM = depth(0.3)

		case rng.Float64() < 0.06:
			// obstacle burst: sometimes near enough to count as a near miss
			d := 0.4 + rng.Float64()*1.6
			rec.Events = []string{"obstacle_center"}
			rec.Classes = []string{randomClass(rng)}
			rec.Confidence = 0.6 + rng.Float64()*0.4
			rec.FreeAheadM = depth(d)

		case rng.Float64() < 0.15:
			if rng.Float64() < 0.5 {
				rec.Events = []string{"veer_left"}
			} else {
				rec.Events = []string{"veer_right"}
			}
			rec.Confidence = 0.8
			rec.FreeAheadM = depth(1.5 + rng.Float64()*2)

		default:
			rec.Events = []string{"proceed"}
			rec.Confidence = 0.8
			rec.FreeAheadM = depth(2 + rng.Float64()*3)
		}

		records = append(records, rec)
	}
	return records
}

func randomClass(rng *rand.Rand) string {
	classes := []string{"person", "pole", "bench", "bicycle", "curb"}
	return classes[rng.Intn(len(classes))]
}

func depth(m float64) *float64 {
	return &m
}

func postRecord(server string, rec *nav.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	resp, err := http.Post(server+"/api/logs/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingest returned %d", resp.StatusCode)
	}
	return nil
}

func writeJSONL(path string, records []nav.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return nil
}
