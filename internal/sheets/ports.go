// Package sheets defines the activity export port and the row layout shared
// by its adapters.
package sheets

import (
	"context"
	"strconv"
	"time"
)

// ActivityWriter appends one activity row per record change.
type ActivityWriter interface {
	AppendActivity(ctx context.Context, row ActivityRow) (rowRef string, err error)
}

// ActivityRow is one line of the activity sheet.
type ActivityRow struct {
	Timestamp time.Time
	Kind      string
	Op        string
	ID        string
	Version   int64
	// Title holds the campaign or donation title, or the beneficiary name.
	Title    string
	Location string
	// Amount is a plain decimal, empty for beneficiaries and removals.
	Amount string
	Status string
}

// ActivityHeader labels the columns written by ActivityRow.Values.
func ActivityHeader() []any {
	return []any{"Timestamp", "Kind", "Operation", "ID", "Version", "Title", "Location", "Amount", "Status"}
}

// Values lays the row out in sheet column order.
func (r ActivityRow) Values() []any {
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Kind,
		r.Op,
		r.ID,
		strconv.FormatInt(r.Version, 10),
		r.Title,
		r.Location,
		r.Amount,
		r.Status,
	}
}
