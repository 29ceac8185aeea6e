package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofrs/uuid"

	"github.com/castworks/designdesk/forms"
	"github.com/castworks/designdesk/model"
)

// TemplateStore is the named, typed collection of form templates. A single
// template per form type may be active: activating one deactivates the
// others of the same type inside the same transaction.
type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db}
}

const templateColumns = `
	t.id, t.name, t.description, t.form_type, t.is_active, t.version,
	t.created_by, t.updated_by, t.created_at, t.updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (t model.FormTemplate, err error) {
	err = row.Scan(
		&t.ID, &t.Name, &t.Description, &t.FormType, &t.IsActive, &t.Version,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	return
}

func (s *TemplateStore) Get(ctx context.Context, id string) (model.FormTemplate, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT`+templateColumns+`
		FROM form_template t
		WHERE t.id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}

	t.Fields, err = s.loadFields(ctx, t.ID)
	return t, err
}

// List returns templates newest first, optionally filtered by form type.
func (s *TemplateStore) List(ctx context.Context, formType model.FormType) ([]model.FormTemplate, error) {
	query := `
		SELECT` + templateColumns + `
		FROM form_template t`
	args := []any{}
	if formType != "" {
		query += ` WHERE t.form_type = ?`
		args = append(args, formType)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.FormTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		templates[i].Fields, err = s.loadFields(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// GetActive returns the active template for a type. Should more than one
// ever be active, the most recently updated wins.
func (s *TemplateStore) GetActive(ctx context.Context, formType model.FormType) (model.FormTemplate, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT`+templateColumns+`
		FROM form_template t
		WHERE t.form_type = ?
			AND t.is_active = 1
		ORDER BY t.updated_at DESC
		LIMIT 1`,
		formType,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}

	t.Fields, err = s.loadFields(ctx, t.ID)
	return t, err
}

func (s *TemplateStore) Create(ctx context.Context, name, description string, formType model.FormType, fields []model.FieldSchema, createdBy string) (model.FormTemplate, error) {
	t := model.FormTemplate{}

	normalized, err := forms.NormalizeFields(fields)
	if err != nil {
		return t, validationErr(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()

	// new templates start out active: retire the current one
	_, err = tx.ExecContext(ctx, `
		UPDATE form_template
		SET is_active = 0
		WHERE form_type = ?
			AND is_active = 1`,
		formType,
	)
	if err != nil {
		return t, err
	}

	now := time.Now().UTC()
	t = model.FormTemplate{
		ID:          uuid.Must(uuid.NewV4()).String(),
		Name:        name,
		Description: description,
		FormType:    formType,
		Fields:      normalized,
		IsActive:    true,
		Version:     1,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO form_template (id, name, description, form_type, is_active, version, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 1, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.FormType, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}

	err = insertFields(ctx, tx, t.ID, normalized)
	if err != nil {
		return t, err
	}

	return t, tx.Commit()
}

// Update replaces the mutable attributes wholesale: the submitted field
// list becomes the field list, with no merge against the previous one.
// Version goes up by one; the caller-supplied version is never checked
// (last write wins). A nil isActive preserves the current flag.
func (s *TemplateStore) Update(ctx context.Context, id, name, description string, fields []model.FieldSchema, isActive *bool, updatedBy string) (model.FormTemplate, error) {
	t := model.FormTemplate{}

	normalized, err := forms.NormalizeFields(fields)
	if err != nil {
		return t, validationErr(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE form_template
		SET
			name = ?,
			description = ?,
			is_active = COALESCE(?, is_active),
			version = version + 1,
			updated_by = ?,
			updated_at = ?
		WHERE id = ?`,
		name,
		description,
		isActive,
		updatedBy,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return t, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t, err
	}
	if n < 1 {
		return t, ErrNotFound
	}

	t, err = scanTemplate(tx.QueryRowContext(ctx, `
		SELECT`+templateColumns+`
		FROM form_template t
		WHERE t.id = ?`,
		id,
	))
	if err != nil {
		return t, err
	}

	if t.IsActive {
		_, err = tx.ExecContext(ctx, `
			UPDATE form_template
			SET is_active = 0
			WHERE form_type = ?
				AND id != ?
				AND is_active = 1`,
			t.FormType,
			t.ID,
		)
		if err != nil {
			return t, err
		}
	}

	// replace all fields
	_, err = tx.ExecContext(ctx, `
		DELETE FROM form_field
		WHERE template_id = ?`,
		id,
	)
	if err != nil {
		return t, err
	}
	err = insertFields(ctx, tx, id, normalized)
	if err != nil {
		return t, err
	}
	t.Fields = normalized

	return t, tx.Commit()
}

func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	// form_field rows go with the template (ON DELETE CASCADE)
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM form_template
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

func insertFields(ctx context.Context, tx *sql.Tx, templateID string, fields []model.FieldSchema) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_field (template_id, field_id, name, label, type, required, placeholder, ord, options, validation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range fields {
		var optionsJson []byte
		if f.Options != nil {
			optionsJson, err = json.Marshal(f.Options)
			if err != nil {
				return err
			}
		}
		var validationJson []byte
		if f.Validation != nil {
			validationJson, err = json.Marshal(f.Validation)
			if err != nil {
				return err
			}
		}

		_, err = stmt.ExecContext(ctx,
			templateID, f.FieldID, f.Name, f.Label, f.Type, f.Required,
			f.Placeholder, f.Order, string(optionsJson), string(validationJson),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TemplateStore) loadFields(ctx context.Context, templateID string) ([]model.FieldSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_id, name, label, type, required, placeholder, ord, options, validation
		FROM form_field
		WHERE template_id = ?
		ORDER BY ord`,
		templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []model.FieldSchema{}
	for rows.Next() {
		f := model.FieldSchema{}
		var opts, validation string
		err = rows.Scan(&f.FieldID, &f.Name, &f.Label, &f.Type, &f.Required, &f.Placeholder, &f.Order, &opts, &validation)
		if err != nil {
			return nil, err
		}

		if opts != "" {
			err = json.Unmarshal([]byte(opts), &f.Options)
			if err != nil {
				return nil, err
			}
		}
		if validation != "" {
			f.Validation = &model.FieldValidation{}
			err = json.Unmarshal([]byte(validation), f.Validation)
			if err != nil {
				return nil, err
			}
		}

		fields = append(fields, f)
	}
	return fields, rows.Err()
}
