package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints session ids for requests that arrive without one.
type IDGenerator func() string

const idPrefix = "demo_"

// TimestampIDs mints "demo_<unix seconds>". Two calls within the same second
// return the same id, so concurrent id-less requests can land in one session.
func TimestampIDs(now func() time.Time) IDGenerator {
	return func() string {
		return idPrefix + strconv.FormatInt(now().Unix(), 10)
	}
}

// RandomIDs mints collision-resistant "demo_<uuid>" ids.
func RandomIDs() IDGenerator {
	return func() string {
		return idPrefix + uuid.NewString()
	}
}

// NewIDGenerator resolves a strategy name ("timestamp" or "uuid").
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", "timestamp":
		return TimestampIDs(time.Now), nil
	case "uuid", "random":
		return RandomIDs(), nil
	default:
		return nil, fmt.Errorf("unknown session id strategy %q", strategy)
	}
}
