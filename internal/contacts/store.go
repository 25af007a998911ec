// Package contacts resolves attendee display names to email addresses.
// The attendee disambiguation step consults it whenever an extracted
// attendee arrives without an address.
package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/db"
)

// Contact is one address-book entry scoped to its owning user.
type Contact struct {
	ID        string                `json:"id"`
	UserID    string                `json:"userId"`
	Name      string                `json:"name"`
	FirstName string                `json:"firstName,omitempty"`
	LastName  string                `json:"lastName,omitempty"`
	Emails    []calendar.EmailEntry `json:"emails"`
	CreatedAt time.Time             `json:"createdDate"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// PrimaryEmail returns the contact's primary address, falling back to
// the first one. Empty when the contact has no addresses at all.
func (c *Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.Primary {
			return e.Value
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0].Value
	}
	return ""
}

// Store persists contacts in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a contact store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts or replaces a contact.
func (s *Store) Upsert(ctx context.Context, c *Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	emailsJSON, _ := json.Marshal(c.Emails)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contacts (id, user_id, name, first_name, last_name, emails, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.FirstName, c.LastName, string(emailsJSON), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting contact %s: %w", c.ID, err)
	}
	return nil
}

// ByName looks up a contact by display name scoped to the owning user.
// Matching is case-insensitive; returns nil when nothing matches.
func (s *Store) ByName(ctx context.Context, userID, name string) (*Contact, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, first_name, last_name, emails, created_at, updated_at
		FROM contacts WHERE user_id = ? AND name = ? COLLATE NOCASE LIMIT 1`, userID, name))
}

// ByEmail looks up a contact by one of its addresses scoped to the
// owning user. Returns nil when nothing matches.
func (s *Store) ByEmail(ctx context.Context, userID, email string) (*Contact, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, first_name, last_name, emails, created_at, updated_at
		FROM contacts WHERE user_id = ? AND emails LIKE '%' || ? || '%' LIMIT 1`, userID, email))
}

func (s *Store) scanOne(row *sql.Row) (*Contact, error) {
	var (
		c          Contact
		emailsJSON string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.FirstName, &c.LastName,
		&emailsJSON, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading contact: %w", err)
	}
	json.Unmarshal([]byte(emailsJSON), &c.Emails)
	return &c, nil
}
