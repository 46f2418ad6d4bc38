package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"donatrack/internal/amqp"
	"donatrack/internal/core"
	"donatrack/internal/log"
	"donatrack/internal/store"
	"donatrack/internal/store/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.RecordEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishRecordEvent(_ context.Context, evt *amqp.RecordEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func newService(pub EventPublisher) *RecordService {
	return NewRecordService(memory.New(store.Options{Seed: true}), pub)
}

func TestRecordService_PublishesAfterMutation(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	d, err := svc.AddDonation(ctx, core.SeedDonations()[0])
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	amount := core.NewMoney(10)
	if _, err := svc.UpdateDonation(ctx, d.ID, core.DonationPatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.RemoveDonation(ctx, d.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pub.events))
	}
	wantOps := []string{amqp.OpCreated, amqp.OpUpdated, amqp.OpRemoved}
	for i, evt := range pub.events {
		if evt.Op != wantOps[i] || evt.ID != d.ID || evt.Kind != "donations" {
			t.Errorf("event %d = %+v", i, evt)
		}
		if evt.Version != int64(i+1) {
			t.Errorf("event %d version = %d", i, evt.Version)
		}
	}

	var got core.Donation
	if err := json.Unmarshal(pub.events[1].Record, &got); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if got.Amount != amount {
		t.Errorf("event carries amount %v, want %v", got.Amount, amount)
	}
	if pub.events[2].Record != nil {
		t.Errorf("removed event should not carry a record")
	}
}

func TestRecordService_RejectedMutationPublishesNothing(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(pub)

	if err := svc.RemoveCampaign(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddBeneficiary(ctx, core.Beneficiary{}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}

func TestRecordService_PublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	svc := newService(&fakePublisher{err: errors.New("broker down")})

	if err := svc.RemoveBeneficiary(ctx, "1"); err != nil {
		t.Fatalf("remove should succeed despite publish failure: %v", err)
	}
	if _, err := svc.GetBeneficiary(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestRecordService_NilPublisher(t *testing.T) {
	svc := newService(nil)
	if _, err := svc.AddCampaign(context.Background(), core.SeedCampaigns()[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}

func TestRecordService_Remove(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	for _, k := range core.Kinds() {
		if err := svc.Remove(ctx, k, "1"); err != nil {
			t.Fatalf("remove %s: %v", k, err)
		}
	}
	if err := svc.Remove(ctx, "profiles", "1"); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestRecordService_Stats(t *testing.T) {
	svc := newService(nil)
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalDonationAmount != core.NewMoney(26000) {
		t.Fatalf("total = %v", st.TotalDonationAmount)
	}
}

func TestRecordService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(pub)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher was not closed")
	}
}

func TestRecordService_MutationLogCarriesOneComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp, Output: &buf})
	svc := newService(nil).WithLogger(logger)

	if _, err := svc.AddDonation(context.Background(), core.SeedDonations()[0]); err != nil {
		t.Fatalf("add: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Record mutated") {
		t.Fatalf("no mutation line in %q", out)
	}
	if n := strings.Count(out, "component="); n != 1 || !strings.Contains(out, "component=records") {
		t.Fatalf("want a single component=records in %q", out)
	}
}
