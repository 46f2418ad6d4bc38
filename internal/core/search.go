package core

import "strings"

// Filter narrows a listed collection. Query is a case-insensitive substring
// matched against the record's text fields; Status must match exactly.
type Filter struct {
	Query  string
	Status string
}

// IsEmpty reports whether the filter lets every record through.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" && f.Status == ""
}

func containsFold(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (f Filter) MatchCampaign(c Campaign) bool {
	if f.Status != "" && string(c.Status) != f.Status {
		return false
	}
	return containsFold(f.Query, c.Title, c.Description, c.Category, c.Location)
}

func (f Filter) MatchDonation(d Donation) bool {
	if f.Status != "" && string(d.Status) != f.Status {
		return false
	}
	return containsFold(f.Query, d.Title, d.Organization, d.Category, d.Location)
}

func (f Filter) MatchBeneficiary(b Beneficiary) bool {
	if f.Status != "" && string(b.Status) != f.Status {
		return false
	}
	return containsFold(f.Query, append([]string{b.Name, b.Location}, b.Needs...)...)
}

// Clone returns a copy that shares no memory with b.
func (b Beneficiary) Clone() Beneficiary {
	if b.Needs != nil {
		b.Needs = append(Tags(nil), b.Needs...)
	}
	return b
}
