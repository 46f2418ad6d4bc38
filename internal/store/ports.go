// Package store defines the record store ports and the options shared by
// its backends.
package store

import (
	"context"
	"time"

	"donatrack/internal/core"

	"github.com/google/uuid"
)

// Ports for the record store. Update and Remove return core.ErrNotFound
// when no record has the given id. List returns a snapshot, newest first.
type (
	CampaignStore interface {
		AddCampaign(ctx context.Context, c core.Campaign) (core.Campaign, error)
		UpdateCampaign(ctx context.Context, id string, p core.CampaignPatch) (core.Campaign, error)
		RemoveCampaign(ctx context.Context, id string) error
		GetCampaign(ctx context.Context, id string) (core.Campaign, error)
		ListCampaigns(ctx context.Context) ([]core.Campaign, error)
	}

	DonationStore interface {
		AddDonation(ctx context.Context, d core.Donation) (core.Donation, error)
		UpdateDonation(ctx context.Context, id string, p core.DonationPatch) (core.Donation, error)
		RemoveDonation(ctx context.Context, id string) error
		GetDonation(ctx context.Context, id string) (core.Donation, error)
		ListDonations(ctx context.Context) ([]core.Donation, error)
	}

	BeneficiaryStore interface {
		AddBeneficiary(ctx context.Context, b core.Beneficiary) (core.Beneficiary, error)
		UpdateBeneficiary(ctx context.Context, id string, p core.BeneficiaryPatch) (core.Beneficiary, error)
		RemoveBeneficiary(ctx context.Context, id string) error
		GetBeneficiary(ctx context.Context, id string) (core.Beneficiary, error)
		ListBeneficiaries(ctx context.Context) ([]core.Beneficiary, error)
	}

	// Snapshotter reads all three collections as of a single moment, so no
	// mutation lands between them.
	Snapshotter interface {
		Snapshot(ctx context.Context) (Snapshot, error)
	}

	// RecordStore is the full store surface consumed by the service layer.
	RecordStore interface {
		CampaignStore
		DonationStore
		BeneficiaryStore
		Snapshotter
	}
)

// Snapshot holds copies of the three collections, newest first.
type Snapshot struct {
	Campaigns     []core.Campaign
	Donations     []core.Donation
	Beneficiaries []core.Beneficiary
}

// Options configures a backend.
type Options struct {
	// Now stamps CreatedAt on added records.
	Now func() time.Time
	// NewID generates record ids.
	NewID func() string
	// Seed loads the example records at construction.
	Seed bool
}

// WithDefaults fills unset hooks with the wall clock and random UUIDs.
func (o Options) WithDefaults() Options {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// MaxIDAttempts bounds id regeneration when a generator repeats itself.
const MaxIDAttempts = 8
