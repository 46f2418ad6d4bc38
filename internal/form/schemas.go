package form

import (
	"fmt"
	"strconv"
	"strings"

	"donatrack/internal/core"
)

// Categories offered by the campaign and donation forms.
var Categories = []string{"Food", "Water", "Healthcare", "Education", "Shelter", "Emergency"}

func CampaignSchema() Schema {
	return Schema{
		{Key: "title", Label: "Title", Placeholder: "Emergency Food Relief", Kind: Text{}, Required: true},
		{Key: "description", Label: "Description", Placeholder: "What the campaign funds", Kind: Textarea{}},
		{Key: "category", Label: "Category", Placeholder: "Select a category", Kind: Select{Options: Categories}, Required: true},
		{Key: "location", Label: "Location", Placeholder: "Haiti", Kind: Text{}, Required: true},
		{Key: "targetAmount", Label: "Target Amount", Placeholder: "10000", Kind: Number{}, Required: true},
		{Key: "currentAmount", Label: "Current Amount", Placeholder: "0", Kind: Number{}},
		{Key: "startDate", Label: "Start Date", Placeholder: "YYYY-MM-DD", Kind: Date{}},
		{Key: "endDate", Label: "End Date", Placeholder: "YYYY-MM-DD", Kind: Date{}},
		{Key: "status", Label: "Status", Placeholder: "pending", Kind: Select{Options: []string{"active", "completed", "pending"}}},
		{Key: "beneficiaries", Label: "Beneficiaries", Placeholder: "0", Kind: Number{Whole: true}},
	}
}

func DonationSchema() Schema {
	return Schema{
		{Key: "title", Label: "Title", Placeholder: "Food Supplies", Kind: Text{}, Required: true},
		{Key: "organization", Label: "Organization", Placeholder: "World Food Programme", Kind: Text{}, Required: true},
		{Key: "location", Label: "Location", Placeholder: "Haiti", Kind: Text{}, Required: true},
		{Key: "amount", Label: "Amount", Placeholder: "5200", Kind: Number{}, Required: true},
		{Key: "date", Label: "Date", Placeholder: "YYYY-MM-DD", Kind: Date{}, Required: true},
		{Key: "status", Label: "Status", Placeholder: "pending", Kind: Select{Options: []string{"delivered", "in_progress", "pending"}}},
		{Key: "beneficiaries", Label: "Beneficiaries", Placeholder: "0", Kind: Number{Whole: true}},
		{Key: "category", Label: "Category", Placeholder: "Select a category", Kind: Select{Options: Categories}},
	}
}

func BeneficiarySchema() Schema {
	return Schema{
		{Key: "name", Label: "Name", Placeholder: "Maria Santos", Kind: Text{}, Required: true},
		{Key: "location", Label: "Location", Placeholder: "City, Country", Kind: Text{}, Required: true},
		{Key: "age", Label: "Age", Placeholder: "34", Kind: Number{Whole: true}, Required: true},
		{Key: "family", Label: "Family Size", Placeholder: "1", Kind: Number{Whole: true}, Required: true},
		{Key: "needs", Label: "Needs", Placeholder: "Food, Medical", Kind: Text{}, Required: true},
		{Key: "lastAid", Label: "Last Aid", Placeholder: "YYYY-MM-DD", Kind: Date{}},
		{Key: "status", Label: "Status", Placeholder: "pending", Kind: Select{Options: []string{"active", "completed", "pending"}}},
		{Key: "image", Label: "Image URL", Placeholder: "https://", Kind: Text{}},
	}
}

// SchemaFor returns the built-in schema of a record kind.
func SchemaFor(kind core.Kind) (Schema, error) {
	switch kind {
	case core.KindCampaigns:
		return CampaignSchema(), nil
	case core.KindDonations:
		return DonationSchema(), nil
	case core.KindBeneficiaries:
		return BeneficiarySchema(), nil
	default:
		return nil, fmt.Errorf("schema: %w: %q", core.ErrInvalidKind, kind)
	}
}

// decoder turns the raw strings of a submitted draft into typed values,
// collecting a field error for each one that does not convert.
type decoder struct {
	schema Schema
	v      Values
	verr   core.ValidationError
}

func newDecoder(schema Schema, v Values) *decoder {
	return &decoder{schema: schema, v: v, verr: core.ValidationError{}}
}

// fail records "<Label> <msg>" against key, matching the wording of
// Field.Check.
func (d *decoder) fail(key, msg string) {
	label := key
	for _, f := range d.schema {
		if f.Key == key {
			label = f.Label
			break
		}
	}
	d.verr.Add(key, label+" "+msg)
}

func (d *decoder) str(key string) string {
	return strings.TrimSpace(d.v[key])
}

func (d *decoder) money(key string) core.Money {
	s := d.str(key)
	if s == "" {
		return core.Money{}
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		d.fail(key, "must be a number")
	}
	return m
}

func (d *decoder) integer(key string) int {
	s := d.str(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d.fail(key, "must be a whole number")
	}
	return n
}

func (d *decoder) date(key string) core.Date {
	s := d.str(key)
	if s == "" {
		return core.Date{}
	}
	dt, err := core.ParseDate(s)
	if err != nil {
		d.fail(key, "must be a date in YYYY-MM-DD format")
	}
	return dt
}

func (d *decoder) status(key, fallback string) string {
	if s := d.str(key); s != "" {
		return s
	}
	return fallback
}

func DecodeCampaign(v Values) (core.Campaign, error) {
	d := newDecoder(CampaignSchema(), v)
	c := core.Campaign{
		Title:         d.str("title"),
		Description:   d.str("description"),
		Category:      d.str("category"),
		Location:      d.str("location"),
		TargetAmount:  d.money("targetAmount"),
		CurrentAmount: d.money("currentAmount"),
		StartDate:     d.date("startDate"),
		EndDate:       d.date("endDate"),
		Status:        core.CampaignStatus(d.status("status", string(core.CampaignPending))),
		Beneficiaries: d.integer("beneficiaries"),
	}
	return c, d.verr.Err()
}

func DecodeDonation(v Values) (core.Donation, error) {
	d := newDecoder(DonationSchema(), v)
	dn := core.Donation{
		Title:         d.str("title"),
		Organization:  d.str("organization"),
		Location:      d.str("location"),
		Amount:        d.money("amount"),
		Date:          d.date("date"),
		Status:        core.DonationStatus(d.status("status", string(core.DonationPending))),
		Beneficiaries: d.integer("beneficiaries"),
		Category:      d.str("category"),
	}
	return dn, d.verr.Err()
}

func DecodeBeneficiary(v Values) (core.Beneficiary, error) {
	d := newDecoder(BeneficiarySchema(), v)
	b := core.Beneficiary{
		Name:     d.str("name"),
		Location: d.str("location"),
		Age:      d.integer("age"),
		Family:   d.integer("family"),
		Needs:    core.ParseTags(d.v["needs"]),
		LastAid:  d.date("lastAid"),
		Status:   core.BeneficiaryStatus(d.status("status", string(core.BeneficiaryPending))),
		Image:    d.str("image"),
	}
	return b, d.verr.Err()
}
