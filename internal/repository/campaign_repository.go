package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unclebandit/journey-engine/internal/db"
	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

type CampaignRepositoryInterface interface {
	ListAll(ctx context.Context) ([]model.Campaign, error)
	ListWhere(ctx context.Context, field string, value any) ([]model.Campaign, error)
	GetOne(ctx context.Context, field string, value any) (*model.Campaign, error)
	Upsert(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id int) error
}

type CampaignRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

var campaignFields = map[string]string{
	"id":                  "id",
	"owner_id":            "owner_id",
	"target_company_name": "target_company_name",
	"status":              "status",
}

const campaignColumns = `id, owner_id, name, target_company_name, objective, status, steps,
	progress, sent_count, total_points, created_at, updated_at, version`

// ====================== Reads ======================

func (r *CampaignRepository) ListAll(ctx context.Context) ([]model.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY id ASC`)
}

// ListWhere returns every campaign whose field equals value, oldest first.
func (r *CampaignRepository) ListWhere(ctx context.Context, field string, value any) ([]model.Campaign, error) {
	col, ok := campaignFields[field]
	if !ok {
		return nil, fmt.Errorf("campaigns cannot be filtered by %q", field)
	}
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE `+col+` = ? ORDER BY id ASC`, value)
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...any) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx, db.Rebind(r.Dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// GetOne returns the first matching campaign, or nil when none matches.
func (r *CampaignRepository) GetOne(ctx context.Context, field string, value any) (*model.Campaign, error) {
	col, ok := campaignFields[field]
	if !ok {
		return nil, fmt.Errorf("campaigns cannot be filtered by %q", field)
	}
	query := db.Rebind(r.Dialect, `SELECT `+campaignColumns+` FROM campaigns WHERE `+col+` = ? ORDER BY id ASC LIMIT 1`)
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// GetCampaignByID is GetOne on the id, with a typed not-found error.
func GetCampaignByID(ctx context.Context, repo CampaignRepositoryInterface, id int) (*model.Campaign, error) {
	c, err := repo.GetOne(ctx, "id", id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

// ====================== Writes ======================

// Upsert inserts a campaign with id 0, otherwise updates it if the stored
// version still equals c.Version. The record is updated in place with the
// assigned id and new version.
func (r *CampaignRepository) Upsert(ctx context.Context, c *model.Campaign) error {
	steps, err := json.Marshal(stepsOrEmpty(c.Steps))
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}

	if c.ID == 0 {
		query := db.Rebind(r.Dialect, `
			INSERT INTO campaigns (owner_id, name, target_company_name, objective, status, steps,
				progress, sent_count, total_points, created_at, updated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
			RETURNING id
		`)
		err := r.DB.QueryRowContext(ctx, query,
			c.OwnerID, c.Name, c.TargetCompanyName, c.Objective, c.Status, string(steps),
			c.Progress, c.SentCount, c.TotalPoints, toMillis(c.CreatedAt), toMillisPtr(c.UpdatedAt),
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		c.Version = 1
		return nil
	}

	query := db.Rebind(r.Dialect, `
		UPDATE campaigns
		SET owner_id=?, name=?, target_company_name=?, objective=?, status=?, steps=?,
			progress=?, sent_count=?, total_points=?, created_at=?, updated_at=?, version=version+1
		WHERE id=? AND version=?
	`)
	res, err := r.DB.ExecContext(ctx, query,
		c.OwnerID, c.Name, c.TargetCompanyName, c.Objective, c.Status, string(steps),
		c.Progress, c.SentCount, c.TotalPoints, toMillis(c.CreatedAt), toMillisPtr(c.UpdatedAt),
		c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("update campaign %d: %w", c.ID, err)
	}
	if err := checkVersioned(ctx, r.DB, r.Dialect, res, "campaigns", c.ID, appErrors.NewCampaignNotFound); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, db.Rebind(r.Dialect, `DELETE FROM campaigns WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete campaign %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var (
		c         model.Campaign
		steps     []byte
		createdAt sql.NullInt64
		updatedAt sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.TargetCompanyName, &c.Objective, &c.Status, &steps,
		&c.Progress, &c.SentCount, &c.TotalPoints, &createdAt, &updatedAt, &c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &c.Steps); err != nil {
			return nil, fmt.Errorf("decode steps of campaign %d: %w", c.ID, err)
		}
	}
	if c.Steps == nil {
		c.Steps = []model.Step{}
	}
	c.CreatedAt = fromMillis(createdAt)
	if updatedAt.Valid {
		t := fromMillis(updatedAt)
		c.UpdatedAt = &t
	}
	return &c, nil
}

func stepsOrEmpty(s []model.Step) []model.Step {
	if s == nil {
		return []model.Step{}
	}
	return s
}

// ====================== Helpers ======================

// checkVersioned tells a missing row apart from a version mismatch when an
// update touched nothing.
func checkVersioned(ctx context.Context, conn *sql.DB, dialect db.Dialect, res sql.Result, table string, id int, notFound func(int) error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var count int
	query := db.Rebind(dialect, `SELECT COUNT(*) FROM `+table+` WHERE id=?`)
	if err := conn.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return fmt.Errorf("check %s %d: %w", table, id, err)
	}
	if count == 0 {
		return notFound(id)
	}
	return fmt.Errorf("%s %d: %w", table, id, appErrors.ErrStaleWrite)
}

// Timestamps are stored as UTC unix millis; NULL means never set.
func toMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixMilli(), Valid: true}
}

func toMillisPtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return toMillis(*t)
}

func fromMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64).UTC()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
