package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"donatrack/internal/core"
	"donatrack/internal/store"
)

var _ store.RecordStore = (*Store)(nil)

// Store keeps the three collections in process memory, newest first.
// A single mutex serialises every mutation and snapshot.
type Store struct {
	mu            sync.Mutex
	now           func() time.Time
	newID         func() string
	campaigns     collection[core.Campaign]
	donations     collection[core.Donation]
	beneficiaries collection[core.Beneficiary]
}

func New(opts store.Options) *Store {
	opts = opts.WithDefaults()
	s := &Store{
		now:           opts.Now,
		newID:         opts.NewID,
		campaigns:     collection[core.Campaign]{id: func(c core.Campaign) string { return c.ID }},
		donations:     collection[core.Donation]{id: func(d core.Donation) string { return d.ID }},
		beneficiaries: collection[core.Beneficiary]{id: func(b core.Beneficiary) string { return b.ID }},
	}
	if opts.Seed {
		s.campaigns.items = core.SeedCampaigns()
		s.donations.items = core.SeedDonations()
		s.beneficiaries.items = core.SeedBeneficiaries()
	}
	return s
}

// collection is an ordered slice with index 0 holding the newest record.
type collection[T any] struct {
	items []T
	id    func(T) string
}

func (c *collection[T]) index(id string) int {
	for i, item := range c.items {
		if c.id(item) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) prepend(v T) {
	c.items = append(c.items, v)
	copy(c.items[1:], c.items)
	c.items[0] = v
}

func (c *collection[T]) remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

func (c *collection[T]) snapshot(clone func(T) T) []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		if clone != nil {
			item = clone(item)
		}
		out[i] = item
	}
	return out
}

// freshID returns an id not yet used in c.
func freshID[T any](c *collection[T], gen func() string) (string, error) {
	for attempt := 0; attempt < store.MaxIDAttempts; attempt++ {
		id := gen()
		if id != "" && c.index(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate id: no unique id after %d attempts", store.MaxIDAttempts)
}

func (s *Store) AddCampaign(_ context.Context, c core.Campaign) (core.Campaign, error) {
	if err := c.Validate(); err != nil {
		return core.Campaign{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := freshID(&s.campaigns, s.newID)
	if err != nil {
		return core.Campaign{}, err
	}
	c.ID, c.CreatedAt = id, s.now()
	s.campaigns.prepend(c)
	return c, nil
}

func (s *Store) UpdateCampaign(_ context.Context, id string, p core.CampaignPatch) (core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.campaigns.index(id)
	if i < 0 {
		return core.Campaign{}, fmt.Errorf("campaign %s: %w", id, core.ErrNotFound)
	}
	merged := p.Apply(s.campaigns.items[i])
	if err := merged.Validate(); err != nil {
		return core.Campaign{}, err
	}
	s.campaigns.items[i] = merged
	return merged, nil
}

func (s *Store) RemoveCampaign(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.campaigns.remove(id) {
		return fmt.Errorf("campaign %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.campaigns.index(id)
	if i < 0 {
		return core.Campaign{}, fmt.Errorf("campaign %s: %w", id, core.ErrNotFound)
	}
	return s.campaigns.items[i], nil
}

func (s *Store) ListCampaigns(_ context.Context) ([]core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaigns.snapshot(nil), nil
}

// Snapshot copies every collection under one lock.
func (s *Store) Snapshot(_ context.Context) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Snapshot{
		Campaigns:     s.campaigns.snapshot(nil),
		Donations:     s.donations.snapshot(nil),
		Beneficiaries: s.beneficiaries.snapshot(core.Beneficiary.Clone),
	}, nil
}

func (s *Store) AddDonation(_ context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := freshID(&s.donations, s.newID)
	if err != nil {
		return core.Donation{}, err
	}
	d.ID, d.CreatedAt = id, s.now()
	s.donations.prepend(d)
	return d, nil
}

func (s *Store) UpdateDonation(_ context.Context, id string, p core.DonationPatch) (core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.donations.index(id)
	if i < 0 {
		return core.Donation{}, fmt.Errorf("donation %s: %w", id, core.ErrNotFound)
	}
	merged := p.Apply(s.donations.items[i])
	if err := merged.Validate(); err != nil {
		return core.Donation{}, err
	}
	s.donations.items[i] = merged
	return merged, nil
}

func (s *Store) RemoveDonation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.donations.remove(id) {
		return fmt.Errorf("donation %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) GetDonation(_ context.Context, id string) (core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.donations.index(id)
	if i < 0 {
		return core.Donation{}, fmt.Errorf("donation %s: %w", id, core.ErrNotFound)
	}
	return s.donations.items[i], nil
}

func (s *Store) ListDonations(_ context.Context) ([]core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.donations.snapshot(nil), nil
}

func (s *Store) AddBeneficiary(_ context.Context, b core.Beneficiary) (core.Beneficiary, error) {
	b.Needs = b.Needs.Clean()
	if err := b.Validate(); err != nil {
		return core.Beneficiary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := freshID(&s.beneficiaries, s.newID)
	if err != nil {
		return core.Beneficiary{}, err
	}
	b.ID, b.CreatedAt = id, s.now()
	s.beneficiaries.prepend(b)
	return b.Clone(), nil
}

func (s *Store) UpdateBeneficiary(_ context.Context, id string, p core.BeneficiaryPatch) (core.Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.beneficiaries.index(id)
	if i < 0 {
		return core.Beneficiary{}, fmt.Errorf("beneficiary %s: %w", id, core.ErrNotFound)
	}
	merged := p.Apply(s.beneficiaries.items[i].Clone())
	if p.Needs != nil {
		merged.Needs = merged.Needs.Clean()
	}
	if err := merged.Validate(); err != nil {
		return core.Beneficiary{}, err
	}
	s.beneficiaries.items[i] = merged
	return merged.Clone(), nil
}

func (s *Store) RemoveBeneficiary(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.beneficiaries.remove(id) {
		return fmt.Errorf("beneficiary %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) GetBeneficiary(_ context.Context, id string) (core.Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.beneficiaries.index(id)
	if i < 0 {
		return core.Beneficiary{}, fmt.Errorf("beneficiary %s: %w", id, core.ErrNotFound)
	}
	return s.beneficiaries.items[i].Clone(), nil
}

func (s *Store) ListBeneficiaries(_ context.Context) ([]core.Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beneficiaries.snapshot(core.Beneficiary.Clone), nil
}
