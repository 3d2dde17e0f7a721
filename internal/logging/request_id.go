package logging

import (
	"fmt"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"
)

// requestIDCounter numbers the request IDs of this process.
var requestIDCounter atomic.Uint64

// GenerateRequestID returns an ID of the form timestamp-counter-random,
// all in hex (e.g. "6710e2a0-0001-a1b2c3d4"). The random part is the first
// group of a version 4 UUID.
func GenerateRequestID() string {
	ts := uint32(time.Now().Unix())
	counter := uint16(requestIDCounter.Add(1))

	random := "00000000"
	if u, err := uuid.NewV4(); err == nil {
		random = u.String()[:8]
	}
	return fmt.Sprintf("%08x-%04x-%s", ts, counter, random)
}
