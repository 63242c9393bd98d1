package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unclebandit/journey-engine/internal/db"
	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

// ContactRepositoryInterface defines methods used by service
type ContactRepositoryInterface interface {
	ListAll(ctx context.Context) ([]model.Contact, error)
	ListWhere(ctx context.Context, field string, value any) ([]model.Contact, error)
	GetOne(ctx context.Context, field string, value any) (*model.Contact, error)
	Upsert(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id int) error
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

var contactFields = map[string]string{
	"id":           "id",
	"company_name": "company_name",
	"email":        "email",
}

const contactColumns = `id, name, email, company_name, notes, history, created_at, updated_at, version`

// ListAll fetches all contacts (used by the history migration)
func (r *ContactRepository) ListAll(ctx context.Context) ([]model.Contact, error) {
	return r.list(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id ASC`)
}

func (r *ContactRepository) ListWhere(ctx context.Context, field string, value any) ([]model.Contact, error) {
	col, ok := contactFields[field]
	if !ok {
		return nil, fmt.Errorf("contacts cannot be filtered by %q", field)
	}
	return r.list(ctx, `SELECT `+contactColumns+` FROM contacts WHERE `+col+` = ? ORDER BY id ASC`, value)
}

func (r *ContactRepository) list(ctx context.Context, query string, args ...any) ([]model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, db.Rebind(r.Dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// GetOne fetches a contact, nil when not found
func (r *ContactRepository) GetOne(ctx context.Context, field string, value any) (*model.Contact, error) {
	col, ok := contactFields[field]
	if !ok {
		return nil, fmt.Errorf("contacts cannot be filtered by %q", field)
	}
	c, err := scanContact(r.DB.QueryRowContext(ctx, db.Rebind(r.Dialect, `SELECT `+contactColumns+` FROM contacts WHERE `+col+` = ? ORDER BY id ASC LIMIT 1`), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func GetContactByID(ctx context.Context, repo ContactRepositoryInterface, id int) (*model.Contact, error) {
	c, err := repo.GetOne(ctx, "id", id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewContactNotFound(id)
	}
	return c, nil
}

func (r *ContactRepository) Upsert(ctx context.Context, c *model.Contact) error {
	history := c.History
	if history == nil {
		history = []model.HistoryEntry{}
	}
	hist, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if c.ID == 0 {
		query := db.Rebind(r.Dialect, `
			INSERT INTO contacts (name, email, company_name, notes, history, created_at, updated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1)
			RETURNING id
		`)
		if err := r.DB.QueryRowContext(ctx, query,
			c.Name, c.Email, c.CompanyName, c.Notes, string(hist), toMillis(c.CreatedAt), toMillisPtr(c.UpdatedAt),
		).Scan(&c.ID); err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
		c.Version = 1
		return nil
	}

	query := db.Rebind(r.Dialect, `
		UPDATE contacts
		SET name=?, email=?, company_name=?, notes=?, history=?, created_at=?, updated_at=?, version=version+1
		WHERE id=? AND version=?
	`)
	res, err := r.DB.ExecContext(ctx, query,
		c.Name, c.Email, c.CompanyName, c.Notes, string(hist), toMillis(c.CreatedAt), toMillisPtr(c.UpdatedAt),
		c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("update contact %d: %w", c.ID, err)
	}
	if err := checkVersioned(ctx, r.DB, r.Dialect, res, "contacts", c.ID, appErrors.NewContactNotFound); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, db.Rebind(r.Dialect, `DELETE FROM contacts WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewContactNotFound(id)
	}
	return nil
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var (
		c         model.Contact
		history   []byte
		createdAt sql.NullInt64
		updatedAt sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CompanyName, &c.Notes, &history, &createdAt, &updatedAt, &c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.History); err != nil {
			return nil, fmt.Errorf("decode history of contact %d: %w", c.ID, err)
		}
	}
	c.CreatedAt = fromMillis(createdAt)
	if updatedAt.Valid {
		t := fromMillis(updatedAt)
		c.UpdatedAt = &t
	}
	return &c, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
