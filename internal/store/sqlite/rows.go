package sqlite

import (
	"time"

	"donatrack/internal/core"
)

const (
	campaignColumns    = `id, title, description, category, location, target_cents, current_cents, start_date, end_date, status, beneficiaries, created_at`
	donationColumns    = `id, title, organization, location, amount_cents, date, status, beneficiaries, category, created_at`
	beneficiaryColumns = `id, name, location, age, family, needs, last_aid, status, image, created_at`
)

// Rows store created_at as unix nanoseconds so timestamps survive exactly.
type (
	campaignRow struct {
		ID            string              `db:"id"`
		Title         string              `db:"title"`
		Description   string              `db:"description"`
		Category      string              `db:"category"`
		Location      string              `db:"location"`
		TargetAmount  core.Money          `db:"target_cents"`
		CurrentAmount core.Money          `db:"current_cents"`
		StartDate     core.Date           `db:"start_date"`
		EndDate       core.Date           `db:"end_date"`
		Status        core.CampaignStatus `db:"status"`
		Beneficiaries int                 `db:"beneficiaries"`
		CreatedAt     int64               `db:"created_at"`
	}

	donationRow struct {
		ID            string              `db:"id"`
		Title         string              `db:"title"`
		Organization  string              `db:"organization"`
		Location      string              `db:"location"`
		Amount        core.Money          `db:"amount_cents"`
		Date          core.Date           `db:"date"`
		Status        core.DonationStatus `db:"status"`
		Beneficiaries int                 `db:"beneficiaries"`
		Category      string              `db:"category"`
		CreatedAt     int64               `db:"created_at"`
	}

	beneficiaryRow struct {
		ID        string                 `db:"id"`
		Name      string                 `db:"name"`
		Location  string                 `db:"location"`
		Age       int                    `db:"age"`
		Family    int                    `db:"family"`
		Needs     core.Tags              `db:"needs"`
		LastAid   core.Date              `db:"last_aid"`
		Status    core.BeneficiaryStatus `db:"status"`
		Image     string                 `db:"image"`
		CreatedAt int64                  `db:"created_at"`
	}
)

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func campaignToRow(c core.Campaign) campaignRow {
	return campaignRow{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Location:      c.Location,
		TargetAmount:  c.TargetAmount,
		CurrentAmount: c.CurrentAmount,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Status:        c.Status,
		Beneficiaries: c.Beneficiaries,
		CreatedAt:     c.CreatedAt.UnixNano(),
	}
}

func (r campaignRow) record() core.Campaign {
	return core.Campaign{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Location:      r.Location,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Status:        r.Status,
		Beneficiaries: r.Beneficiaries,
		CreatedAt:     fromNanos(r.CreatedAt),
	}
}

func donationToRow(d core.Donation) donationRow {
	return donationRow{
		ID:            d.ID,
		Title:         d.Title,
		Organization:  d.Organization,
		Location:      d.Location,
		Amount:        d.Amount,
		Date:          d.Date,
		Status:        d.Status,
		Beneficiaries: d.Beneficiaries,
		Category:      d.Category,
		CreatedAt:     d.CreatedAt.UnixNano(),
	}
}

func (r donationRow) record() core.Donation {
	return core.Donation{
		ID:            r.ID,
		Title:         r.Title,
		Organization:  r.Organization,
		Location:      r.Location,
		Amount:        r.Amount,
		Date:          r.Date,
		Status:        r.Status,
		Beneficiaries: r.Beneficiaries,
		Category:      r.Category,
		CreatedAt:     fromNanos(r.CreatedAt),
	}
}

func beneficiaryToRow(b core.Beneficiary) beneficiaryRow {
	return beneficiaryRow{
		ID:        b.ID,
		Name:      b.Name,
		Location:  b.Location,
		Age:       b.Age,
		Family:    b.Family,
		Needs:     b.Needs,
		LastAid:   b.LastAid,
		Status:    b.Status,
		Image:     b.Image,
		CreatedAt: b.CreatedAt.UnixNano(),
	}
}

func (r beneficiaryRow) record() core.Beneficiary {
	return core.Beneficiary{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		Age:       r.Age,
		Family:    r.Family,
		Needs:     r.Needs,
		LastAid:   r.LastAid,
		Status:    r.Status,
		Image:     r.Image,
		CreatedAt: fromNanos(r.CreatedAt),
	}
}
