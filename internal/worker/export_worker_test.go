package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"donatrack/internal/amqp"
	"donatrack/internal/core"
	"donatrack/internal/sheets"
)

type fakeWriter struct {
	mu   sync.Mutex
	rows []sheets.ActivityRow
	err  error
}

func (f *fakeWriter) AppendActivity(ctx context.Context, row sheets.ActivityRow) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "Activity!A2:I2", nil
}

func mustEvent(t *testing.T, kind, op, id string, record any) *amqp.RecordEvent {
	t.Helper()
	evt, err := amqp.NewRecordEvent(kind, op, id, 7, record)
	if err != nil {
		t.Fatalf("NewRecordEvent: %v", err)
	}
	return evt
}

func TestRowFromEvent(t *testing.T) {
	donation := core.Donation{
		ID:       "don-1",
		Title:    "Winter coats",
		Location: "Kyiv",
		Amount:   core.NewMoney(5200),
		Status:   core.DonationPending,
	}
	campaign := core.Campaign{
		ID:           "cmp-1",
		Title:        "Clean water",
		Location:     "Nairobi",
		TargetAmount: core.Money{Cents: 125050},
		Status:       core.CampaignActive,
	}
	beneficiary := core.Beneficiary{
		ID:       "ben-1",
		Name:     "Amina",
		Location: "Dhaka",
		Status:   core.BeneficiaryActive,
	}

	tests := []struct {
		name string
		evt  *amqp.RecordEvent
		want sheets.ActivityRow
	}{
		{
			name: "donation",
			evt:  mustEvent(t, "donations", amqp.OpCreated, "don-1", donation),
			want: sheets.ActivityRow{Kind: "donations", Op: "created", ID: "don-1", Version: 7,
				Title: "Winter coats", Location: "Kyiv", Amount: "5200", Status: "pending"},
		},
		{
			name: "campaign uses target amount",
			evt:  mustEvent(t, "campaigns", amqp.OpUpdated, "cmp-1", campaign),
			want: sheets.ActivityRow{Kind: "campaigns", Op: "updated", ID: "cmp-1", Version: 7,
				Title: "Clean water", Location: "Nairobi", Amount: "1250.50", Status: "active"},
		},
		{
			name: "beneficiary uses name",
			evt:  mustEvent(t, "beneficiaries", amqp.OpCreated, "ben-1", beneficiary),
			want: sheets.ActivityRow{Kind: "beneficiaries", Op: "created", ID: "ben-1", Version: 7,
				Title: "Amina", Location: "Dhaka", Status: "active"},
		},
		{
			name: "removal without record",
			evt:  mustEvent(t, "donations", amqp.OpRemoved, "don-1", nil),
			want: sheets.ActivityRow{Kind: "donations", Op: "removed", ID: "don-1", Version: 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RowFromEvent(tt.evt)
			if err != nil {
				t.Fatalf("RowFromEvent: %v", err)
			}
			tt.want.Timestamp = tt.evt.Timestamp
			if got != tt.want {
				t.Errorf("RowFromEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRowFromEvent_Malformed(t *testing.T) {
	tests := []struct {
		name string
		evt  *amqp.RecordEvent
	}{
		{"nil", nil},
		{"unknown kind", &amqp.RecordEvent{Kind: "volunteers", Op: amqp.OpCreated, ID: "x", Record: json.RawMessage(`{}`)}},
		{"missing id", &amqp.RecordEvent{Kind: "donations", Op: amqp.OpCreated, Record: json.RawMessage(`{}`)}},
		{"create without record", &amqp.RecordEvent{Kind: "donations", Op: amqp.OpCreated, ID: "x"}},
		{"bad record", &amqp.RecordEvent{Kind: "donations", Op: amqp.OpCreated, ID: "x", Record: json.RawMessage(`{"amount":"abc"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RowFromEvent(tt.evt); !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("error = %v, want ErrMalformedEvent", err)
			}
		})
	}
}

func TestHandleRecordEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("appends row", func(t *testing.T) {
		fw := &fakeWriter{}
		w := NewExportWorker(fw, 0)
		if err := w.HandleRecordEvent(ctx, mustEvent(t, "donations", amqp.OpRemoved, "don-9", nil)); err != nil {
			t.Fatalf("HandleRecordEvent: %v", err)
		}
		if len(fw.rows) != 1 || fw.rows[0].ID != "don-9" {
			t.Fatalf("rows = %+v", fw.rows)
		}
	})

	t.Run("writer failure is returned for requeue", func(t *testing.T) {
		fw := &fakeWriter{err: errors.New("quota exceeded")}
		w := NewExportWorker(fw, 0)
		if err := w.HandleRecordEvent(ctx, mustEvent(t, "donations", amqp.OpRemoved, "don-9", nil)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed event is acknowledged", func(t *testing.T) {
		fw := &fakeWriter{}
		w := NewExportWorker(fw, 0)
		evt := &amqp.RecordEvent{Kind: "volunteers", Op: amqp.OpCreated, ID: "x"}
		if err := w.HandleRecordEvent(ctx, evt); err != nil {
			t.Fatalf("HandleRecordEvent: %v", err)
		}
		if len(fw.rows) != 0 {
			t.Errorf("rows = %d, want 0", len(fw.rows))
		}
	})

	t.Run("cancelled while waiting for a slot", func(t *testing.T) {
		fw := &fakeWriter{}
		w := NewExportWorker(fw, 0.001)
		evt := mustEvent(t, "donations", amqp.OpRemoved, "don-9", nil)
		if err := w.HandleRecordEvent(ctx, evt); err != nil {
			t.Fatalf("first event: %v", err)
		}

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		if err := w.HandleRecordEvent(cctx, evt); err == nil {
			t.Fatal("expected the second event to wait past the deadline")
		}
		if len(fw.rows) != 1 {
			t.Errorf("rows = %d, want 1", len(fw.rows))
		}
	})
}
