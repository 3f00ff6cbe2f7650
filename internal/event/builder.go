// Package event assembles the flattened record sent for each tracked event.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/vincentbai/browsetrace-tracker/internal/attribution"
	"github.com/vincentbai/browsetrace-tracker/internal/host"
	"github.com/vincentbai/browsetrace-tracker/internal/identity"
	"github.com/vincentbai/browsetrace-tracker/internal/models"
	"github.com/vincentbai/browsetrace-tracker/internal/pathway"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Builder struct {
	win      host.Window
	identity *identity.Store
	pathway  *pathway.Tracker
	now      func() time.Time
}

func NewBuilder(win host.Window, ids *identity.Store, path *pathway.Tracker, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{win: win, identity: ids, pathway: path, now: now}
}

// Build consumes one pathway step and returns the record for eventType.
// Fields are layered lowest to highest precedence: base fields, pathway,
// attribution, extra, then environment; a later layer overwrites an earlier
// key.
func (b *Builder) Build(ctx context.Context, eventType models.EventType, extra models.Fields) models.Record {
	timestamp := b.now().UTC().Format(TimestampLayout)
	loc := b.win.Location()
	path := b.pathway.Advance(ctx, loc, b.win.Document())
	sessionID := b.identity.GetOrCreateSessionID(ctx)

	var fields models.Fields
	fields.Set(models.FieldEventType, eventType)
	fields.Set(models.FieldTimestamp, timestamp)
	fields.Set(models.FieldSessionID, sessionID)
	fields.Set(models.FieldURL, loc.Href())

	fields.Set(models.FieldCurrentPage, path.CurrentPage)
	fields.Set(models.FieldPreviousPage, path.PreviousPage)
	fields.Set(models.FieldSequenceStep, path.SequenceStep)

	fields.Merge(attribution.Extract(loc.Href()))
	fields.Merge(extra)

	nav := b.win.Navigator()
	scr := b.win.Screen()
	fields.Set(models.FieldUserAgent, nav.UserAgent())
	fields.Set(models.FieldScreenResolution, fmt.Sprintf("%dx%d", scr.Width(), scr.Height()))
	fields.Set(models.FieldLanguage, nav.Language())

	return models.NewRecord(fields)
}
