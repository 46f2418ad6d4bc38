// Package sqlite implements the record store on an in-memory SQLite
// database. The schema is applied with embedded migrations and the data
// lives only as long as the Store is open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"donatrack/internal/core"
	"donatrack/internal/store"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var _ store.RecordStore = (*Store)(nil)

type Store struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

// MemoryDSN names a shared-cache in-memory database. Every connection
// opened with the same name sees the same data.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// New opens the in-memory database called name, applies the schema and
// optionally loads the example records.
func New(ctx context.Context, name string, opts store.Options) (*Store, error) {
	if name == "" {
		return nil, errors.New("sqlite: database name is required")
	}
	opts = opts.WithDefaults()
	dsn := MemoryDSN(name)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The database disappears with its last connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, now: opts.Now, newID: opts.NewID}
	if opts.Seed {
		if err := s.seed(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed records: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// seed inserts the example records oldest first so listing returns them
// in their declared order.
func (s *Store) seed(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		campaigns := core.SeedCampaigns()
		slices.Reverse(campaigns)
		for _, c := range campaigns {
			if _, err := tx.NamedExecContext(ctx, insertCampaign, campaignToRow(c)); err != nil {
				return fmt.Errorf("insert campaign %s: %w", c.ID, err)
			}
		}
		donations := core.SeedDonations()
		slices.Reverse(donations)
		for _, d := range donations {
			if _, err := tx.NamedExecContext(ctx, insertDonation, donationToRow(d)); err != nil {
				return fmt.Errorf("insert donation %s: %w", d.ID, err)
			}
		}
		beneficiaries := core.SeedBeneficiaries()
		slices.Reverse(beneficiaries)
		for _, b := range beneficiaries {
			if _, err := tx.NamedExecContext(ctx, insertBeneficiary, beneficiaryToRow(b)); err != nil {
				return fmt.Errorf("insert beneficiary %s: %w", b.ID, err)
			}
		}
		slog.DebugContext(ctx, "Seeded sqlite store",
			"campaigns", len(campaigns),
			"donations", len(donations),
			"beneficiaries", len(beneficiaries))
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// freshID draws ids until one is unused in table.
func (s *Store) freshID(ctx context.Context, tx *sqlx.Tx, table string) (string, error) {
	for attempt := 0; attempt < store.MaxIDAttempts; attempt++ {
		id := s.newID()
		if id == "" {
			continue
		}
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", id); err != nil {
			return "", fmt.Errorf("check id in %s: %w", table, err)
		}
		if n == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate id: no unique id after %d attempts", store.MaxIDAttempts)
}

func getRow[R any](ctx context.Context, q sqlx.QueryerContext, kind, query, id string) (R, error) {
	var r R
	if err := sqlx.GetContext(ctx, q, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
		}
		return r, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return r, nil
}

func (s *Store) deleteRow(ctx context.Context, table, kind, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

const (
	insertCampaign = `INSERT INTO campaigns (` + campaignColumns + `)
VALUES (:id, :title, :description, :category, :location, :target_cents, :current_cents, :start_date, :end_date, :status, :beneficiaries, :created_at)`
	updateCampaign = `UPDATE campaigns SET title = :title, description = :description, category = :category,
location = :location, target_cents = :target_cents, current_cents = :current_cents, start_date = :start_date,
end_date = :end_date, status = :status, beneficiaries = :beneficiaries WHERE id = :id`
	selectCampaign = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = ?`
	listCampaigns  = `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY seq DESC`

	insertDonation = `INSERT INTO donations (` + donationColumns + `)
VALUES (:id, :title, :organization, :location, :amount_cents, :date, :status, :beneficiaries, :category, :created_at)`
	updateDonation = `UPDATE donations SET title = :title, organization = :organization, location = :location,
amount_cents = :amount_cents, date = :date, status = :status, beneficiaries = :beneficiaries,
category = :category WHERE id = :id`
	selectDonation = `SELECT ` + donationColumns + ` FROM donations WHERE id = ?`
	listDonations  = `SELECT ` + donationColumns + ` FROM donations ORDER BY seq DESC`

	insertBeneficiary = `INSERT INTO beneficiaries (` + beneficiaryColumns + `)
VALUES (:id, :name, :location, :age, :family, :needs, :last_aid, :status, :image, :created_at)`
	updateBeneficiary = `UPDATE beneficiaries SET name = :name, location = :location, age = :age, family = :family,
needs = :needs, last_aid = :last_aid, status = :status, image = :image WHERE id = :id`
	selectBeneficiary = `SELECT ` + beneficiaryColumns + ` FROM beneficiaries WHERE id = ?`
	listBeneficiaries = `SELECT ` + beneficiaryColumns + ` FROM beneficiaries ORDER BY seq DESC`
)

func (s *Store) AddCampaign(ctx context.Context, c core.Campaign) (core.Campaign, error) {
	if err := c.Validate(); err != nil {
		return core.Campaign{}, err
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.freshID(ctx, tx, "campaigns")
		if err != nil {
			return err
		}
		c.ID, c.CreatedAt = id, s.now()
		if _, err := tx.NamedExecContext(ctx, insertCampaign, campaignToRow(c)); err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Campaign{}, err
	}
	return c, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, id string, p core.CampaignPatch) (core.Campaign, error) {
	var merged core.Campaign
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getRow[campaignRow](ctx, tx, "campaign", selectCampaign, id)
		if err != nil {
			return err
		}
		merged = p.Apply(row.record())
		if err := merged.Validate(); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, updateCampaign, campaignToRow(merged)); err != nil {
			return fmt.Errorf("update campaign %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return core.Campaign{}, err
	}
	return merged, nil
}

func (s *Store) RemoveCampaign(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "campaigns", "campaign", id)
}

func (s *Store) GetCampaign(ctx context.Context, id string) (core.Campaign, error) {
	row, err := getRow[campaignRow](ctx, s.db, "campaign", selectCampaign, id)
	if err != nil {
		return core.Campaign{}, err
	}
	return row.record(), nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]core.Campaign, error) {
	return selectCampaigns(ctx, s.db)
}

func selectCampaigns(ctx context.Context, q sqlx.QueryerContext) ([]core.Campaign, error) {
	var rows []campaignRow
	if err := sqlx.SelectContext(ctx, q, &rows, listCampaigns); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	out := make([]core.Campaign, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (s *Store) AddDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.freshID(ctx, tx, "donations")
		if err != nil {
			return err
		}
		d.ID, d.CreatedAt = id, s.now()
		if _, err := tx.NamedExecContext(ctx, insertDonation, donationToRow(d)); err != nil {
			return fmt.Errorf("insert donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Donation{}, err
	}
	return d, nil
}

func (s *Store) UpdateDonation(ctx context.Context, id string, p core.DonationPatch) (core.Donation, error) {
	var merged core.Donation
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getRow[donationRow](ctx, tx, "donation", selectDonation, id)
		if err != nil {
			return err
		}
		merged = p.Apply(row.record())
		if err := merged.Validate(); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, updateDonation, donationToRow(merged)); err != nil {
			return fmt.Errorf("update donation %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return core.Donation{}, err
	}
	return merged, nil
}

func (s *Store) RemoveDonation(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "donations", "donation", id)
}

func (s *Store) GetDonation(ctx context.Context, id string) (core.Donation, error) {
	row, err := getRow[donationRow](ctx, s.db, "donation", selectDonation, id)
	if err != nil {
		return core.Donation{}, err
	}
	return row.record(), nil
}

func (s *Store) ListDonations(ctx context.Context) ([]core.Donation, error) {
	return selectDonations(ctx, s.db)
}

func selectDonations(ctx context.Context, q sqlx.QueryerContext) ([]core.Donation, error) {
	var rows []donationRow
	if err := sqlx.SelectContext(ctx, q, &rows, listDonations); err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	out := make([]core.Donation, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (s *Store) AddBeneficiary(ctx context.Context, b core.Beneficiary) (core.Beneficiary, error) {
	b.Needs = b.Needs.Clean()
	if err := b.Validate(); err != nil {
		return core.Beneficiary{}, err
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.freshID(ctx, tx, "beneficiaries")
		if err != nil {
			return err
		}
		b.ID, b.CreatedAt = id, s.now()
		if _, err := tx.NamedExecContext(ctx, insertBeneficiary, beneficiaryToRow(b)); err != nil {
			return fmt.Errorf("insert beneficiary: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Beneficiary{}, err
	}
	return b, nil
}

func (s *Store) UpdateBeneficiary(ctx context.Context, id string, p core.BeneficiaryPatch) (core.Beneficiary, error) {
	var merged core.Beneficiary
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getRow[beneficiaryRow](ctx, tx, "beneficiary", selectBeneficiary, id)
		if err != nil {
			return err
		}
		merged = p.Apply(row.record())
		if p.Needs != nil {
			merged.Needs = merged.Needs.Clean()
		}
		if err := merged.Validate(); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, updateBeneficiary, beneficiaryToRow(merged)); err != nil {
			return fmt.Errorf("update beneficiary %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return core.Beneficiary{}, err
	}
	return merged, nil
}

func (s *Store) RemoveBeneficiary(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "beneficiaries", "beneficiary", id)
}

func (s *Store) GetBeneficiary(ctx context.Context, id string) (core.Beneficiary, error) {
	row, err := getRow[beneficiaryRow](ctx, s.db, "beneficiary", selectBeneficiary, id)
	if err != nil {
		return core.Beneficiary{}, err
	}
	return row.record(), nil
}

func (s *Store) ListBeneficiaries(ctx context.Context) ([]core.Beneficiary, error) {
	return selectBeneficiaries(ctx, s.db)
}

func selectBeneficiaries(ctx context.Context, q sqlx.QueryerContext) ([]core.Beneficiary, error) {
	var rows []beneficiaryRow
	if err := sqlx.SelectContext(ctx, q, &rows, listBeneficiaries); err != nil {
		return nil, fmt.Errorf("list beneficiaries: %w", err)
	}
	out := make([]core.Beneficiary, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

// Snapshot reads the three tables inside one transaction.
func (s *Store) Snapshot(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if snap.Campaigns, err = selectCampaigns(ctx, tx); err != nil {
			return err
		}
		if snap.Donations, err = selectDonations(ctx, tx); err != nil {
			return err
		}
		snap.Beneficiaries, err = selectBeneficiaries(ctx, tx)
		return err
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}
