// Package worker turns record events into rows of the activity sheet.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"donatrack/internal/amqp"
	"donatrack/internal/core"
	"donatrack/internal/metrics"
	"donatrack/internal/sheets"

	"golang.org/x/time/rate"
)

// ErrMalformedEvent marks events that can never be exported.
var ErrMalformedEvent = errors.New("malformed record event")

// ExportWorker appends one activity row per record event, pacing calls to
// the sheet to stay under the API quota.
type ExportWorker struct {
	sheets  sheets.ActivityWriter
	limiter *rate.Limiter
}

// NewExportWorker creates a worker allowed perSecond appends per second.
// A non-positive rate disables pacing.
func NewExportWorker(w sheets.ActivityWriter, perSecond float64) *ExportWorker {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ExportWorker{
		sheets:  w,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// HandleRecordEvent exports a single event from AMQP. Malformed events are
// logged and acknowledged, since redelivery cannot fix them.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, evt *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event",
		"kind", evt.Kind,
		"op", evt.Op,
		"id", evt.ID,
		"version", evt.Version)

	row, err := RowFromEvent(evt)
	if err != nil {
		slog.WarnContext(ctx, "Dropping record event", "id", evt.ID, "error", err)
		metrics.RecordExport(err)
		return nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for export slot: %w", err)
	}

	ref, err := w.sheets.AppendActivity(ctx, row)
	metrics.RecordExport(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export record event",
			"kind", evt.Kind,
			"id", evt.ID,
			"error", err)
		return fmt.Errorf("append activity: %w", err)
	}

	slog.InfoContext(ctx, "Record event exported",
		"kind", evt.Kind,
		"id", evt.ID,
		"sheets_ref", ref)
	return nil
}

// recordFields is the subset of a record the sheet shows. Each kind fills
// the fields it has.
type recordFields struct {
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	Location     string      `json:"location"`
	Status       string      `json:"status"`
	Amount       *core.Money `json:"amount"`
	TargetAmount *core.Money `json:"targetAmount"`
}

// RowFromEvent lays an event out as a sheet row. Removal events carry no
// record and fill only the identifying columns.
func RowFromEvent(evt *amqp.RecordEvent) (sheets.ActivityRow, error) {
	if evt == nil {
		return sheets.ActivityRow{}, ErrMalformedEvent
	}
	kind, err := core.ParseKind(evt.Kind)
	if err != nil {
		return sheets.ActivityRow{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.ID == "" {
		return sheets.ActivityRow{}, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}

	row := sheets.ActivityRow{
		Timestamp: evt.Timestamp,
		Kind:      kind.String(),
		Op:        evt.Op,
		ID:        evt.ID,
		Version:   evt.Version,
	}
	if len(evt.Record) == 0 {
		if evt.Op != amqp.OpRemoved {
			return sheets.ActivityRow{}, fmt.Errorf("%w: %s event without record", ErrMalformedEvent, evt.Op)
		}
		return row, nil
	}

	var f recordFields
	if err := json.Unmarshal(evt.Record, &f); err != nil {
		return sheets.ActivityRow{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	row.Location = f.Location
	row.Status = f.Status
	switch kind {
	case core.KindCampaigns:
		row.Title = f.Title
		if f.TargetAmount != nil {
			row.Amount = f.TargetAmount.Decimal()
		}
	case core.KindDonations:
		row.Title = f.Title
		if f.Amount != nil {
			row.Amount = f.Amount.Decimal()
		}
	case core.KindBeneficiaries:
		row.Title = f.Name
	}
	return row, nil
}
