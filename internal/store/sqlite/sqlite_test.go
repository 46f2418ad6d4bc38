package sqlite

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"donatrack/internal/core"
	"donatrack/internal/store"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T, opts store.Options) *Store {
	t.Helper()
	name := "test-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s, err := New(context.Background(), name, opts)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeededListingMatchesDeclaredOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, store.Options{Seed: true})

	donations, err := s.ListDonations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := core.SeedDonations()
	if len(donations) != len(want) {
		t.Fatalf("expected %d donations, got %d", len(want), len(donations))
	}
	for i := range want {
		if donations[i].ID != want[i].ID || donations[i].Amount != want[i].Amount {
			t.Fatalf("position %d: got %+v", i, donations[i])
		}
		if !donations[i].CreatedAt.Equal(want[i].CreatedAt) || !donations[i].Date.Equal(want[i].Date.Time) {
			t.Fatalf("position %d: timestamps did not survive storage", i)
		}
	}

	beneficiaries, _ := s.ListBeneficiaries(ctx)
	if !reflect.DeepEqual(beneficiaries[0].Needs, core.SeedBeneficiaries()[0].Needs) {
		t.Fatalf("needs did not survive storage: %v", beneficiaries[0].Needs)
	}
}

func TestAddPrependsAndStamps(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	n := 0
	s := newTestStore(t, store.Options{
		Seed:  true,
		Now:   func() time.Time { return t0 },
		NewID: func() string { n++; return fmt.Sprintf("new-%d", n) },
	})

	c := core.SeedCampaigns()[0]
	c.Title = "Flood Relief"
	got, err := s.AddCampaign(ctx, c)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.ID != "new-1" || !got.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected stamp %s %v", got.ID, got.CreatedAt)
	}

	list, _ := s.ListCampaigns(ctx)
	if len(list) != 3 || list[0].ID != "new-1" {
		t.Fatalf("expected new campaign first, got %+v", list)
	}
}

func TestAddSkipsTakenIDs(t *testing.T) {
	ids := []string{"1", "2", "fresh"}
	s := newTestStore(t, store.Options{
		Seed: true,
		NewID: func() string {
			id := ids[0]
			if len(ids) > 1 {
				ids = ids[1:]
			}
			return id
		},
	})
	got, err := s.AddDonation(context.Background(), core.SeedDonations()[0])
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.ID != "fresh" {
		t.Fatalf("expected fresh id, got %s", got.ID)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, store.Options{Seed: true})

	status := core.BeneficiaryCompleted
	needs := core.Tags{"Water", " Water "}
	got, err := s.UpdateBeneficiary(ctx, "1", core.BeneficiaryPatch{Status: &status, Needs: &needs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != status || !reflect.DeepEqual(got.Needs, core.Tags{"Water"}) {
		t.Fatalf("unexpected update result %+v", got)
	}
	stored, _ := s.GetBeneficiary(ctx, "1")
	if stored.Name != "Maria Santos" || stored.Status != status {
		t.Fatalf("unexpected stored record %+v", stored)
	}

	empty := core.Tags{}
	if _, err := s.UpdateBeneficiary(ctx, "1", core.BeneficiaryPatch{Needs: &empty}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := s.UpdateCampaign(ctx, "missing", core.CampaignPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.RemoveDonation(ctx, "3"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveDonation(ctx, "3"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	if _, err := s.GetDonation(ctx, "3"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, _ := s.ListDonations(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(list))
	}
}

func TestStoresWithDifferentNamesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t, store.Options{Seed: true})
	b := newTestStore(t, store.Options{})

	if err := a.RemoveCampaign(ctx, "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list, _ := b.ListCampaigns(ctx)
	if len(list) != 0 {
		t.Fatalf("unseeded store sees %d campaigns", len(list))
	}
}

func TestSnapshotReadsAllCollections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, store.Options{Seed: true})

	c := core.SeedCampaigns()[0]
	c.Title = "Flood Relief"
	if _, err := s.AddCampaign(ctx, c); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Campaigns) != 3 || len(snap.Donations) != 3 || len(snap.Beneficiaries) != 3 {
		t.Fatalf("unexpected sizes %d/%d/%d", len(snap.Campaigns), len(snap.Donations), len(snap.Beneficiaries))
	}
	if snap.Campaigns[0].Title != "Flood Relief" {
		t.Fatalf("expected newest campaign first, got %q", snap.Campaigns[0].Title)
	}
	if !reflect.DeepEqual(snap.Beneficiaries[0].Needs, core.SeedBeneficiaries()[0].Needs) {
		t.Fatalf("needs did not survive storage: %v", snap.Beneficiaries[0].Needs)
	}
}
