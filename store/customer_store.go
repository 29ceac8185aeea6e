package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"

	"github.com/castworks/designdesk/model"
)

type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db}
}

// Create persists a mapped customer payload. The raw form bag travels
// along as JSON so template changes do not orphan collected values.
func (s *CustomerStore) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	c.ID = uuid.Must(uuid.NewV4()).String()
	c.CreatedAt = time.Now().UTC()

	var formData []byte
	if c.FormData != nil {
		var err error
		formData, err = json.Marshal(c.FormData)
		if err != nil {
			return c, err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer (id, name, email, phone, street, city, state, zip_code, form_data, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name,
		c.ContactInfo.Email, c.ContactInfo.Phone,
		c.ContactInfo.Address.Street, c.ContactInfo.Address.City,
		c.ContactInfo.Address.State, c.ContactInfo.Address.ZipCode,
		string(formData), c.CreatedBy, c.CreatedAt,
	)
	return c, err
}

// Get is used by tests and admin tooling; intake itself is write-only.
func (s *CustomerStore) Get(ctx context.Context, id string) (model.Customer, error) {
	c := model.Customer{}
	var formData string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, street, city, state, zip_code, form_data, created_by, created_at
		FROM customer
		WHERE id = ?`,
		id,
	).Scan(
		&c.ID, &c.Name,
		&c.ContactInfo.Email, &c.ContactInfo.Phone,
		&c.ContactInfo.Address.Street, &c.ContactInfo.Address.City,
		&c.ContactInfo.Address.State, &c.ContactInfo.Address.ZipCode,
		&formData, &c.CreatedBy, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	if formData != "" {
		err = json.Unmarshal([]byte(formData), &c.FormData)
	}
	return c, err
}
