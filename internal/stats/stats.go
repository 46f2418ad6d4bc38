// Package stats derives dashboard figures from a snapshot of the record
// collections. Every call rescans the collections; nothing is cached.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"donatrack/internal/core"
	"donatrack/internal/store"
)

const (
	uncategorized = "(Uncategorized)"
	monthLayout   = "2006-01"
)

// Source reads a consistent copy of the record collections.
type Source = store.Snapshotter

// Snapshot holds the three collections read at one point in time.
type Snapshot = store.Snapshot

// Aggregator computes Stats from a Source.
type Aggregator struct {
	src Source
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Compute reads a fresh snapshot and summarises it.
func (a *Aggregator) Compute(ctx context.Context) (core.Stats, error) {
	snap, err := Read(ctx, a.src)
	if err != nil {
		return core.Stats{}, err
	}
	return Summarize(snap), nil
}

// Read takes a snapshot of src.
func Read(ctx context.Context, src Source) (Snapshot, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read records: %w", err)
	}
	return snap, nil
}

func Summarize(s Snapshot) core.Stats {
	return core.Stats{
		TotalDonationAmount:   TotalDonationAmount(s.Donations),
		TotalBeneficiaries:    TotalBeneficiaries(s.Beneficiaries),
		ActiveCampaignCount:   ActiveCampaignCount(s.Campaigns),
		DistinctLocationCount: DistinctLocationCount(s.Campaigns, s.Donations, s.Beneficiaries),
		PeopleReached:         PeopleReached(s.Donations),
		ByCategory:            ByCategory(s.Donations),
		Campaigns:             Progress(s.Campaigns),
		ByMonth:               ByMonth(s.Donations, s.Beneficiaries),
	}
}

func TotalDonationAmount(donations []core.Donation) core.Money {
	var total core.Money
	for _, d := range donations {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalBeneficiaries counts beneficiary records, not household members.
func TotalBeneficiaries(beneficiaries []core.Beneficiary) int {
	return len(beneficiaries)
}

func ActiveCampaignCount(campaigns []core.Campaign) int {
	n := 0
	for _, c := range campaigns {
		if c.Status == core.CampaignActive {
			n++
		}
	}
	return n
}

// DistinctLocationCount counts the distinct strings among campaign and
// donation locations and beneficiary cities. Matching is exact: no
// trimming and no case folding.
func DistinctLocationCount(campaigns []core.Campaign, donations []core.Donation, beneficiaries []core.Beneficiary) int {
	seen := make(map[string]struct{}, len(campaigns)+len(donations)+len(beneficiaries))
	for _, c := range campaigns {
		seen[c.Location] = struct{}{}
	}
	for _, d := range donations {
		seen[d.Location] = struct{}{}
	}
	for _, b := range beneficiaries {
		seen[b.City()] = struct{}{}
	}
	return len(seen)
}

// PeopleReached sums the beneficiaries count of every donation.
func PeopleReached(donations []core.Donation) int {
	n := 0
	for _, d := range donations {
		n += d.Beneficiaries
	}
	return n
}

// ByCategory groups donation amounts by category, largest first.
func ByCategory(donations []core.Donation) []core.CategoryAmount {
	byCat := map[string]int64{}
	var total int64
	for _, d := range donations {
		name := strings.TrimSpace(d.Category)
		if name == "" {
			name = uncategorized
		}
		byCat[name] += d.Amount.Cents
		total += d.Amount.Cents
	}

	list := make([]core.CategoryAmount, 0, len(byCat))
	for name, cents := range byCat {
		list = append(list, core.CategoryAmount{
			Name:    name,
			Amount:  core.Money{Cents: cents},
			Percent: percent(cents, total),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Amount.Cents != list[j].Amount.Cents {
			return list[i].Amount.Cents > list[j].Amount.Cents
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Progress reports each campaign's raised amount against its target, in
// collection order. Percentages above 100 are kept.
func Progress(campaigns []core.Campaign) []core.CampaignProgress {
	out := make([]core.CampaignProgress, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, core.CampaignProgress{
			ID:      c.ID,
			Title:   c.Title,
			Raised:  c.CurrentAmount,
			Target:  c.TargetAmount,
			Percent: c.Progress(),
		})
	}
	return out
}

// ByMonth buckets donations by the month of their date and beneficiaries by
// the month of their last aid, oldest month first. Beneficiaries never aided
// are left out.
func ByMonth(donations []core.Donation, beneficiaries []core.Beneficiary) []core.MonthAmount {
	months := map[string]*core.MonthAmount{}
	bucket := func(d core.Date) *core.MonthAmount {
		key := d.Format(monthLayout)
		m, ok := months[key]
		if !ok {
			m = &core.MonthAmount{Month: key}
			months[key] = m
		}
		return m
	}
	for _, d := range donations {
		if d.Date.IsEmpty() {
			continue
		}
		m := bucket(d.Date)
		m.Amount = m.Amount.Add(d.Amount)
		m.Donations++
	}
	for _, b := range beneficiaries {
		if b.LastAid.IsEmpty() {
			continue
		}
		bucket(b.LastAid).Beneficiaries++
	}

	out := make([]core.MonthAmount, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// percent is part/total rounded to the nearest integer.
func percent(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((part*100 + total/2) / total)
}
