package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"donatrack/internal/amqp"
	"donatrack/internal/core"
	"donatrack/internal/log"
	"donatrack/internal/metrics"
	"donatrack/internal/stats"
	"donatrack/internal/store"
)

// EventPublisher is the outbound side of the AMQP client.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, evt *amqp.RecordEvent) error
	Close() error
}

// RecordService orchestrates record mutations across the store and AMQP.
// Reads go straight to the embedded store.
type RecordService struct {
	store.RecordStore
	publisher EventPublisher
	stats     *stats.Aggregator
	logger    *log.StructuredLogger
	version   atomic.Int64
}

// NewRecordService wraps st. A nil publisher disables event publishing.
func NewRecordService(st store.RecordStore, publisher EventPublisher) *RecordService {
	return &RecordService{
		RecordStore: st,
		publisher:   publisher,
		stats:       stats.NewAggregator(st),
		logger:      log.NewStructuredLogger(nil),
	}
}

// WithLogger replaces the logger used for mutation records.
func (s *RecordService) WithLogger(l *log.Logger) *RecordService {
	s.logger = log.NewStructuredLogger(l)
	return s
}

// Stats recomputes the dashboard summary from the current collections.
func (s *RecordService) Stats(ctx context.Context) (core.Stats, error) {
	return s.stats.Compute(ctx)
}

// mutate runs fn, records the outcome and publishes an event on success.
// A failed publish is logged but never fails the mutation.
func mutate[T any](ctx context.Context, s *RecordService, kind core.Kind, op, id string, fn func() (T, error), idOf func(T) string, withRecord bool) (T, error) {
	v, err := fn()
	metrics.RecordMutation(kind.String(), op, err)
	if err != nil {
		slog.DebugContext(ctx, "Record mutation rejected",
			"kind", kind, "op", op, "id", id, "error", err)
		return v, err
	}
	if idOf != nil {
		id = idOf(v)
	}

	version := s.version.Add(1)
	s.logger.LogRecordMutated(ctx, kind.String(), op, id, version)

	var record any
	if withRecord {
		record = v
	}
	if err := s.publish(ctx, kind, op, id, version, record); err != nil {
		s.logger.LogError(ctx, "Failed to publish record event", err, log.ComponentAMQP, op,
			log.NewFields().WithRecord(kind.String(), id))
	}
	return v, nil
}

func (s *RecordService) publish(ctx context.Context, kind core.Kind, op, id string, version int64, record any) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping record event")
		return nil
	}

	evt, err := amqp.NewRecordEvent(kind.String(), op, id, version, record)
	if err != nil {
		return err
	}
	err = s.publisher.PublishRecordEvent(ctx, evt)
	metrics.RecordPublish(err)
	return err
}

func (s *RecordService) AddCampaign(ctx context.Context, c core.Campaign) (core.Campaign, error) {
	return mutate(ctx, s, core.KindCampaigns, amqp.OpCreated, "",
		func() (core.Campaign, error) { return s.RecordStore.AddCampaign(ctx, c) },
		func(c core.Campaign) string { return c.ID }, true)
}

func (s *RecordService) UpdateCampaign(ctx context.Context, id string, p core.CampaignPatch) (core.Campaign, error) {
	return mutate(ctx, s, core.KindCampaigns, amqp.OpUpdated, id,
		func() (core.Campaign, error) { return s.RecordStore.UpdateCampaign(ctx, id, p) },
		nil, true)
}

func (s *RecordService) RemoveCampaign(ctx context.Context, id string) error {
	_, err := mutate(ctx, s, core.KindCampaigns, amqp.OpRemoved, id,
		func() (struct{}, error) { return struct{}{}, s.RecordStore.RemoveCampaign(ctx, id) },
		nil, false)
	return err
}

func (s *RecordService) AddDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	return mutate(ctx, s, core.KindDonations, amqp.OpCreated, "",
		func() (core.Donation, error) { return s.RecordStore.AddDonation(ctx, d) },
		func(d core.Donation) string { return d.ID }, true)
}

func (s *RecordService) UpdateDonation(ctx context.Context, id string, p core.DonationPatch) (core.Donation, error) {
	return mutate(ctx, s, core.KindDonations, amqp.OpUpdated, id,
		func() (core.Donation, error) { return s.RecordStore.UpdateDonation(ctx, id, p) },
		nil, true)
}

func (s *RecordService) RemoveDonation(ctx context.Context, id string) error {
	_, err := mutate(ctx, s, core.KindDonations, amqp.OpRemoved, id,
		func() (struct{}, error) { return struct{}{}, s.RecordStore.RemoveDonation(ctx, id) },
		nil, false)
	return err
}

func (s *RecordService) AddBeneficiary(ctx context.Context, b core.Beneficiary) (core.Beneficiary, error) {
	return mutate(ctx, s, core.KindBeneficiaries, amqp.OpCreated, "",
		func() (core.Beneficiary, error) { return s.RecordStore.AddBeneficiary(ctx, b) },
		func(b core.Beneficiary) string { return b.ID }, true)
}

func (s *RecordService) UpdateBeneficiary(ctx context.Context, id string, p core.BeneficiaryPatch) (core.Beneficiary, error) {
	return mutate(ctx, s, core.KindBeneficiaries, amqp.OpUpdated, id,
		func() (core.Beneficiary, error) { return s.RecordStore.UpdateBeneficiary(ctx, id, p) },
		nil, true)
}

func (s *RecordService) RemoveBeneficiary(ctx context.Context, id string) error {
	_, err := mutate(ctx, s, core.KindBeneficiaries, amqp.OpRemoved, id,
		func() (struct{}, error) { return struct{}{}, s.RecordStore.RemoveBeneficiary(ctx, id) },
		nil, false)
	return err
}

// Remove deletes the record of the given kind.
func (s *RecordService) Remove(ctx context.Context, kind core.Kind, id string) error {
	switch kind {
	case core.KindCampaigns:
		return s.RemoveCampaign(ctx, id)
	case core.KindDonations:
		return s.RemoveDonation(ctx, id)
	case core.KindBeneficiaries:
		return s.RemoveBeneficiary(ctx, id)
	default:
		return fmt.Errorf("remove: %w: %q", core.ErrInvalidKind, kind)
	}
}

// Close closes the AMQP client. The store belongs to the backend factory
// and is released by its cleanup.
func (s *RecordService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close record service: amqp: %w", err)
	}
	return nil
}

var _ store.RecordStore = (*RecordService)(nil)
