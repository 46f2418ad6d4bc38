package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindCampaigns     Kind = "campaigns"
	KindDonations     Kind = "donations"
	KindBeneficiaries Kind = "beneficiaries"
)

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignPending   CampaignStatus = "pending"

	DonationDelivered  DonationStatus = "delivered"
	DonationInProgress DonationStatus = "in_progress"
	DonationPending    DonationStatus = "pending"

	BeneficiaryActive    BeneficiaryStatus = "active"
	BeneficiaryCompleted BeneficiaryStatus = "completed"
	BeneficiaryPending   BeneficiaryStatus = "pending"
)

type (
	// Kind names one of the three record collections.
	Kind string

	CampaignStatus    string
	DonationStatus    string
	BeneficiaryStatus string

	Campaign struct {
		ID            string         `json:"id"`
		Title         string         `json:"title"`
		Description   string         `json:"description"`
		Category      string         `json:"category"`
		Location      string         `json:"location"`
		TargetAmount  Money          `json:"targetAmount"`
		CurrentAmount Money          `json:"currentAmount"`
		StartDate     Date           `json:"startDate"`
		EndDate       Date           `json:"endDate"`
		Status        CampaignStatus `json:"status"`
		Beneficiaries int            `json:"beneficiaries"`
		CreatedAt     time.Time      `json:"createdAt"`
	}

	Donation struct {
		ID            string         `json:"id"`
		Title         string         `json:"title"`
		Organization  string         `json:"organization"`
		Location      string         `json:"location"`
		Amount        Money          `json:"amount"`
		Date          Date           `json:"date"`
		Status        DonationStatus `json:"status"`
		Beneficiaries int            `json:"beneficiaries"`
		Category      string         `json:"category"`
		CreatedAt     time.Time      `json:"createdAt"`
	}

	Beneficiary struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		Location  string            `json:"location"`
		Age       int               `json:"age"`
		Family    int               `json:"family"`
		Needs     Tags              `json:"needs"`
		LastAid   Date              `json:"lastAid"`
		Status    BeneficiaryStatus `json:"status"`
		Image     string            `json:"image"`
		CreatedAt time.Time         `json:"createdAt"`
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidKind      = errors.New("invalid record kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrValidation       = errors.New("validation failed")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyLocation    = errors.New("empty location")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyNeeds       = errors.New("needs cannot be empty")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
)

// Kinds lists every collection in display order.
func Kinds() []Kind {
	return []Kind{KindCampaigns, KindDonations, KindBeneficiaries}
}

// ParseKind maps a collection name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCampaigns, KindDonations, KindBeneficiaries:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) String() string {
	return string(k)
}

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignActive, CampaignCompleted, CampaignPending:
		return true
	}
	return false
}

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationDelivered, DonationInProgress, DonationPending:
		return true
	}
	return false
}

func (s BeneficiaryStatus) IsValid() bool {
	switch s {
	case BeneficiaryActive, BeneficiaryCompleted, BeneficiaryPending:
		return true
	}
	return false
}

func (c Campaign) Validate() error {
	verr := ValidationError{}
	if strings.TrimSpace(c.Title) == "" {
		verr.Add("title", ErrEmptyTitle.Error())
	}
	if strings.TrimSpace(c.Location) == "" {
		verr.Add("location", ErrEmptyLocation.Error())
	}
	if strings.TrimSpace(c.Category) == "" {
		verr.Add("category", "empty category")
	}
	if err := c.TargetAmount.Validate(); err != nil {
		verr.Add("targetAmount", err.Error())
	}
	if c.CurrentAmount.Cents < 0 {
		verr.Add("currentAmount", ErrInvalidAmount.Error())
	}
	if !c.StartDate.IsEmpty() && !c.EndDate.IsEmpty() && c.EndDate.Before(c.StartDate.Time) {
		verr.Add("endDate", "end date must not be before start date")
	}
	if !c.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%s %q", ErrInvalidStatus, c.Status))
	}
	if c.Beneficiaries < 0 {
		verr.Add("beneficiaries", ErrNegativeQuantity.Error())
	}
	return verr.Err()
}

func (d Donation) Validate() error {
	verr := ValidationError{}
	if strings.TrimSpace(d.Title) == "" {
		verr.Add("title", ErrEmptyTitle.Error())
	}
	if strings.TrimSpace(d.Organization) == "" {
		verr.Add("organization", "empty organization")
	}
	if strings.TrimSpace(d.Location) == "" {
		verr.Add("location", ErrEmptyLocation.Error())
	}
	if err := d.Amount.Validate(); err != nil {
		verr.Add("amount", err.Error())
	}
	if err := d.Date.Validate(); err != nil {
		verr.Add("date", err.Error())
	}
	if !d.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%s %q", ErrInvalidStatus, d.Status))
	}
	if d.Beneficiaries < 0 {
		verr.Add("beneficiaries", ErrNegativeQuantity.Error())
	}
	return verr.Err()
}

func (b Beneficiary) Validate() error {
	verr := ValidationError{}
	if strings.TrimSpace(b.Name) == "" {
		verr.Add("name", ErrEmptyName.Error())
	}
	if strings.TrimSpace(b.Location) == "" {
		verr.Add("location", ErrEmptyLocation.Error())
	}
	if b.Age < 1 {
		verr.Add("age", "age must be positive")
	}
	if b.Family < 1 {
		verr.Add("family", "family size must be positive")
	}
	if len(b.Needs.Clean()) == 0 {
		verr.Add("needs", ErrEmptyNeeds.Error())
	}
	if !b.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("%s %q", ErrInvalidStatus, b.Status))
	}
	return verr.Err()
}

// City returns the first comma-delimited segment of the location, untrimmed.
func (b Beneficiary) City() string {
	city, _, _ := strings.Cut(b.Location, ",")
	return city
}

// Progress returns how far the campaign is towards its target, in percent.
func (c Campaign) Progress() int {
	if c.TargetAmount.Cents <= 0 {
		return 0
	}
	return int(c.CurrentAmount.Cents * 100 / c.TargetAmount.Cents)
}
