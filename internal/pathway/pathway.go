// Package pathway counts the pages a visitor has seen in the current tab.
package pathway

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/vincentbai/browsetrace-tracker/internal/host"
	"github.com/vincentbai/browsetrace-tracker/internal/storage"
)

const StepKey = "dns_sequence_step"

// Pathway is the journey position reported with each event.
type Pathway struct {
	CurrentPage  string
	PreviousPage string
	SequenceStep int
}

type Tracker struct {
	store  storage.Store
	logger *log.Logger
}

func NewTracker(store storage.Store, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Advance consumes one step: it reads the stored step (0 when absent or not
// a number), increments it, and stores the result. Callers must invoke it
// once per tracked event.
func (t *Tracker) Advance(ctx context.Context, loc host.Location, doc host.Document) Pathway {
	step := t.current(ctx) + 1
	if err := t.store.Set(ctx, StepKey, strconv.Itoa(step), 0); err != nil {
		t.logger.Printf("pathway: store step: %v", err)
	}
	return Pathway{
		CurrentPage:  loc.Pathname(),
		PreviousPage: doc.Referrer(),
		SequenceStep: step,
	}
}

func (t *Tracker) current(ctx context.Context) int {
	raw, err := t.store.Get(ctx, StepKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.logger.Printf("pathway: read step: %v", err)
		}
		return 0
	}
	return parseStep(raw)
}

// parseStep reads a leading decimal integer, ignoring trailing garbage, and
// falls back to 0.
func parseStep(raw string) int {
	s := strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
