package core

// Patches carry the fields of an update. A nil field keeps the stored value;
// identity and creation time are never patched.
type (
	CampaignPatch struct {
		Title         *string         `json:"title,omitempty"`
		Description   *string         `json:"description,omitempty"`
		Category      *string         `json:"category,omitempty"`
		Location      *string         `json:"location,omitempty"`
		TargetAmount  *Money          `json:"targetAmount,omitempty"`
		CurrentAmount *Money          `json:"currentAmount,omitempty"`
		StartDate     *Date           `json:"startDate,omitempty"`
		EndDate       *Date           `json:"endDate,omitempty"`
		Status        *CampaignStatus `json:"status,omitempty"`
		Beneficiaries *int            `json:"beneficiaries,omitempty"`
	}

	DonationPatch struct {
		Title         *string         `json:"title,omitempty"`
		Organization  *string         `json:"organization,omitempty"`
		Location      *string         `json:"location,omitempty"`
		Amount        *Money          `json:"amount,omitempty"`
		Date          *Date           `json:"date,omitempty"`
		Status        *DonationStatus `json:"status,omitempty"`
		Beneficiaries *int            `json:"beneficiaries,omitempty"`
		Category      *string         `json:"category,omitempty"`
	}

	BeneficiaryPatch struct {
		Name     *string            `json:"name,omitempty"`
		Location *string            `json:"location,omitempty"`
		Age      *int               `json:"age,omitempty"`
		Family   *int               `json:"family,omitempty"`
		Needs    *Tags              `json:"needs,omitempty"`
		LastAid  *Date              `json:"lastAid,omitempty"`
		Status   *BeneficiaryStatus `json:"status,omitempty"`
		Image    *string            `json:"image,omitempty"`
	}
)

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Apply merges the patch over c.
func (p CampaignPatch) Apply(c Campaign) Campaign {
	set(&c.Title, p.Title)
	set(&c.Description, p.Description)
	set(&c.Category, p.Category)
	set(&c.Location, p.Location)
	set(&c.TargetAmount, p.TargetAmount)
	set(&c.CurrentAmount, p.CurrentAmount)
	set(&c.StartDate, p.StartDate)
	set(&c.EndDate, p.EndDate)
	set(&c.Status, p.Status)
	set(&c.Beneficiaries, p.Beneficiaries)
	return c
}

// Apply merges the patch over d.
func (p DonationPatch) Apply(d Donation) Donation {
	set(&d.Title, p.Title)
	set(&d.Organization, p.Organization)
	set(&d.Location, p.Location)
	set(&d.Amount, p.Amount)
	set(&d.Date, p.Date)
	set(&d.Status, p.Status)
	set(&d.Beneficiaries, p.Beneficiaries)
	set(&d.Category, p.Category)
	return d
}

// Apply merges the patch over b. Needs are copied so the patch and the
// record never share a backing array.
func (p BeneficiaryPatch) Apply(b Beneficiary) Beneficiary {
	set(&b.Name, p.Name)
	set(&b.Location, p.Location)
	set(&b.Age, p.Age)
	set(&b.Family, p.Family)
	if p.Needs != nil {
		b.Needs = append(Tags(nil), (*p.Needs)...)
	}
	set(&b.LastAid, p.LastAid)
	set(&b.Status, p.Status)
	set(&b.Image, p.Image)
	return b
}
