package stats

import (
	"context"
	"errors"
	"testing"

	"donatrack/internal/core"
	"donatrack/internal/store"
	"donatrack/internal/store/memory"
)

func TestTotalDonationAmount(t *testing.T) {
	var donations []core.Donation
	for _, units := range []int64{5200, 12500, 8300} {
		donations = append(donations, core.Donation{Amount: core.NewMoney(units)})
	}
	if got := TotalDonationAmount(donations); got != core.NewMoney(26000) {
		t.Fatalf("total = %v, want 26000", got)
	}
	if got := TotalDonationAmount(nil); got.Cents != 0 {
		t.Fatalf("empty total = %v", got)
	}
}

func TestTotalBeneficiariesIgnoresFamilySize(t *testing.T) {
	bs := []core.Beneficiary{{Family: 5}, {Family: 1}, {Family: 12}}
	if got := TotalBeneficiaries(bs); got != 3 {
		t.Fatalf("total = %d, want 3", got)
	}
}

func TestActiveCampaignCount(t *testing.T) {
	cs := []core.Campaign{
		{Status: core.CampaignActive},
		{Status: core.CampaignActive},
		{Status: core.CampaignCompleted},
	}
	if got := ActiveCampaignCount(cs); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}
}

func TestDistinctLocationCount(t *testing.T) {
	tests := []struct {
		name          string
		campaigns     []core.Campaign
		donations     []core.Donation
		beneficiaries []core.Beneficiary
		want          int
	}{
		{
			name:      "seeded campaigns and donations",
			campaigns: core.SeedCampaigns(),
			donations: core.SeedDonations(),
			want:      3,
		},
		{
			name:          "beneficiary city is the first segment",
			campaigns:     []core.Campaign{{Location: "Nairobi"}},
			beneficiaries: []core.Beneficiary{{Location: "Nairobi, Kenya"}},
			want:          1,
		},
		{
			name:      "whitespace is significant",
			campaigns: []core.Campaign{{Location: "Haiti"}},
			donations: []core.Donation{{Location: " Haiti"}},
			want:      2,
		},
		{
			name:      "case is significant",
			campaigns: []core.Campaign{{Location: "haiti"}},
			donations: []core.Donation{{Location: "Haiti"}},
			want:      2,
		},
		{
			name: "empty collections",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistinctLocationCount(tt.campaigns, tt.donations, tt.beneficiaries); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestByCategory(t *testing.T) {
	got := ByCategory(core.SeedDonations())
	want := []core.CategoryAmount{
		{Name: "Water", Amount: core.NewMoney(12500), Percent: 48},
		{Name: "Healthcare", Amount: core.NewMoney(8300), Percent: 32},
		{Name: "Food", Amount: core.NewMoney(5200), Percent: 20},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	blank := ByCategory([]core.Donation{{Amount: core.NewMoney(1)}})
	if blank[0].Name != uncategorized || blank[0].Percent != 100 {
		t.Fatalf("unexpected row %+v", blank[0])
	}
}

func TestByMonth(t *testing.T) {
	donations := []core.Donation{
		{Amount: core.NewMoney(300), Date: core.NewDate(2024, 3, 2)},
		{Amount: core.NewMoney(100), Date: core.NewDate(2023, 12, 31)},
		{Amount: core.NewMoney(50), Date: core.NewDate(2024, 3, 28)},
		{Amount: core.NewMoney(999)},
	}
	beneficiaries := []core.Beneficiary{
		{LastAid: core.NewDate(2024, 2, 14)},
		{LastAid: core.NewDate(2024, 3, 1)},
		{Name: "never aided"},
	}

	got := ByMonth(donations, beneficiaries)
	want := []core.MonthAmount{
		{Month: "2023-12", Amount: core.NewMoney(100), Donations: 1},
		{Month: "2024-02", Beneficiaries: 1},
		{Month: "2024-03", Amount: core.NewMoney(350), Donations: 2, Beneficiaries: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if empty := ByMonth(nil, nil); len(empty) != 0 {
		t.Fatalf("expected no months, got %+v", empty)
	}
}

func TestAggregatorOnSeededStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New(store.Options{Seed: true})

	got, err := NewAggregator(s).Compute(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got.TotalDonationAmount != core.NewMoney(26000) {
		t.Errorf("total donations = %v", got.TotalDonationAmount)
	}
	if got.TotalBeneficiaries != 3 || got.ActiveCampaignCount != 2 {
		t.Errorf("unexpected counts %+v", got)
	}
	// Haiti, Kenya, Bangladesh plus three beneficiary cities
	if got.DistinctLocationCount != 6 {
		t.Errorf("locations = %d, want 6", got.DistinctLocationCount)
	}
	if got.PeopleReached != 340+850+520 {
		t.Errorf("people reached = %d", got.PeopleReached)
	}
	if len(got.Campaigns) != 2 || got.Campaigns[0].Percent != 52 {
		t.Errorf("unexpected progress %+v", got.Campaigns)
	}
	wantMonth := core.MonthAmount{Month: "2024-01", Amount: core.NewMoney(26000), Donations: 3, Beneficiaries: 3}
	if len(got.ByMonth) != 1 || got.ByMonth[0] != wantMonth {
		t.Errorf("by month = %+v", got.ByMonth)
	}

	// recomputed on every call
	if err := s.RemoveDonation(ctx, "2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	again, _ := NewAggregator(s).Compute(ctx)
	if again.TotalDonationAmount != core.NewMoney(13500) {
		t.Errorf("total after remove = %v", again.TotalDonationAmount)
	}
}

type failingSource struct{ *memory.Store }

func (*failingSource) Snapshot(context.Context) (store.Snapshot, error) {
	return store.Snapshot{}, errors.New("boom")
}

func TestComputePropagatesErrors(t *testing.T) {
	src := &failingSource{memory.New(store.Options{})}
	if _, err := NewAggregator(src).Compute(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
