package nav

import "errors"

// ErrUnauthorized is returned when a query requester is not an authorized
// emergency contact for the subject client. The HTTP surface maps it to
// 403 before any telemetry is read.
var ErrUnauthorized = errors.New("requester is not an authorized contact")
