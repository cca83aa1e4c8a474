package reaction

import (
	"sync"
	"time"
)

// TranscriptEntry is one line of the caption/signal feed.
type TranscriptEntry struct {
	SpeakerDisplayName     string
	SpeakerParticipantType string
	Timestamp              time.Time
	Comment                string
	// Signal marks reaction lines so the feed can style them apart from
	// spoken captions.
	Signal bool
}

// Transcript is the append-only local feed. It is rendered elsewhere; here
// it only collects entries.
type Transcript struct {
	mu      sync.Mutex
	entries []TranscriptEntry
}

// Append adds one entry to the feed.
func (t *Transcript) Append(entry TranscriptEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the feed in append order.
func (t *Transcript) Entries() []TranscriptEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
