package logging

import (
	"regexp"
	"testing"
)

var requestIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{8}$`)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if !requestIDPattern.MatchString(id1) {
		t.Errorf("GenerateRequestID() = %q, want timestamp-counter-random", id1)
	}

	if id1 == id2 {
		t.Errorf("GenerateRequestID returned duplicate IDs: %s", id1)
	}
}

func TestGenerateRequestIDUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id := GenerateRequestID()
		if ids[id] {
			t.Errorf("Duplicate request ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGenerateRequestIDRandomPart(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		id := GenerateRequestID()
		seen[id[len(id)-8:]] = true
	}
	if len(seen) < 60 {
		t.Errorf("only %d distinct random parts in 64 IDs", len(seen))
	}
	if seen["00000000"] {
		t.Error("random part fell back to zeros")
	}
}
