package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"designcollab/internal/design"
)

// PostgresDesignStore persists designs in a single table with the element
// sequence held as a jsonb array. Every mutation is one UPDATE statement
// that merges the patch and bumps version/last_modified_at together, so a
// merge-and-bump is atomic without explicit transactions.
type PostgresDesignStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresDesignStore(db *sql.DB, logger *zap.Logger) *PostgresDesignStore {
	return &PostgresDesignStore{db: db, logger: logger}
}

const designColumns = `design_id, name, COALESCE(description, ''), width, height,
	canvas_background, elements, version, last_modified_at, created_at, updated_at`

func (s *PostgresDesignStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM designs WHERE design_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check design %s: %w", id, err)
	}
	return exists, nil
}

func (s *PostgresDesignStore) ByID(ctx context.Context, id string) (*design.Design, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+designColumns+` FROM designs WHERE design_id = $1`, id)
	return scanDesign(row)
}

func (s *PostgresDesignStore) MergeFields(ctx context.Context, id string, fields map[string]interface{}) (*design.Design, error) {
	var elements []byte
	if els, ok := fields["elements"]; ok {
		raw, err := json.Marshal(els)
		if err != nil {
			return nil, fmt.Errorf("marshal elements: %w", err)
		}
		elements = raw
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE designs SET
			name              = COALESCE($2, name),
			description       = COALESCE($3, description),
			width             = COALESCE($4, width),
			height            = COALESCE($5, height),
			canvas_background = COALESCE($6, canvas_background),
			elements          = COALESCE($7::jsonb, elements),
			version           = version + 1,
			last_modified_at  = NOW(),
			updated_at        = NOW()
		WHERE design_id = $1
		RETURNING `+designColumns,
		id,
		nullString(fields, "name"),
		nullString(fields, "description"),
		nullInt(fields, "width"),
		nullInt(fields, "height"),
		nullString(fields, "canvasBackground"),
		elements,
	)
	return scanDesign(row)
}

func (s *PostgresDesignStore) AppendElement(ctx context.Context, id string, el design.Element) (*design.Design, error) {
	raw, err := json.Marshal([]design.Element{el})
	if err != nil {
		return nil, fmt.Errorf("marshal element: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE designs SET
			elements         = elements || $2::jsonb,
			version          = version + 1,
			last_modified_at = NOW(),
			updated_at       = NOW()
		WHERE design_id = $1
		RETURNING `+designColumns,
		id, raw,
	)
	return scanDesign(row)
}

func (s *PostgresDesignStore) MergeElement(ctx context.Context, id, elementID string, updates map[string]interface{}) (*design.Design, error) {
	raw, err := json.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("marshal element updates: %w", err)
	}

	// Merges into the first element whose id matches; the WHERE clause keeps
	// the write from landing when no element matches so the version stays
	// untouched in that case.
	row := s.db.QueryRowContext(ctx, `
		UPDATE designs SET
			elements = (
				SELECT jsonb_agg(
					CASE WHEN ord = (
						SELECT MIN(ord2)
						FROM jsonb_array_elements(designs.elements) WITH ORDINALITY AS m(el2, ord2)
						WHERE el2->>'id' = $2
					) THEN el || $3::jsonb ELSE el END
					ORDER BY ord)
				FROM jsonb_array_elements(designs.elements) WITH ORDINALITY AS t(el, ord)
			),
			version          = version + 1,
			last_modified_at = NOW(),
			updated_at       = NOW()
		WHERE design_id = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(designs.elements) AS e(el)
			WHERE el->>'id' = $2
		  )
		RETURNING `+designColumns,
		id, elementID, raw,
	)

	d, err := scanDesign(row)
	if err == design.ErrDesignNotFound {
		// No row matched: the design may exist with the element missing.
		exists, exErr := s.Exists(ctx, id)
		if exErr != nil {
			return nil, exErr
		}
		if exists {
			return nil, design.ErrElementNotFound
		}
		return nil, design.ErrDesignNotFound
	}
	return d, err
}

func (s *PostgresDesignStore) RemoveElement(ctx context.Context, id, elementID string) (*design.Design, error) {
	// Filter-then-save: removes all matches, bumps the version even when
	// nothing matched.
	row := s.db.QueryRowContext(ctx, `
		UPDATE designs SET
			elements = COALESCE((
				SELECT jsonb_agg(el ORDER BY ord)
				FROM jsonb_array_elements(designs.elements) WITH ORDINALITY AS t(el, ord)
				WHERE el->>'id' IS DISTINCT FROM $2
			), '[]'::jsonb),
			version          = version + 1,
			last_modified_at = NOW(),
			updated_at       = NOW()
		WHERE design_id = $1
		RETURNING `+designColumns,
		id, elementID,
	)
	return scanDesign(row)
}

func (s *PostgresDesignStore) Create(ctx context.Context, d *design.Design) error {
	if d.Width == 0 {
		d.Width = design.DefaultWidth
	}
	if d.Height == 0 {
		d.Height = design.DefaultHeight
	}
	if d.CanvasBackground == "" {
		d.CanvasBackground = design.DefaultBackground
	}
	if d.Elements == nil {
		d.Elements = []design.Element{}
	}
	elements, err := json.Marshal(d.Elements)
	if err != nil {
		return fmt.Errorf("marshal elements: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO designs (design_id, name, description, width, height, canvas_background, elements)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING version, last_modified_at, created_at, updated_at`,
		d.ID, d.Name, d.Description, d.Width, d.Height, d.CanvasBackground, elements,
	)
	if err := row.Scan(&d.Version, &d.LastModifiedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("insert design: %w", err)
	}
	return nil
}

func (s *PostgresDesignStore) List(ctx context.Context, page, limit int) ([]design.Design, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM designs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count designs: %w", err)
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT design_id, name, COALESCE(description, ''), width, height,
			canvas_background, version, last_modified_at, created_at, updated_at
		FROM designs
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	designs := []design.Design{}
	for rows.Next() {
		var d design.Design
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Width, &d.Height,
			&d.CanvasBackground, &d.Version, &d.LastModifiedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan design: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, total, rows.Err()
}

func (s *PostgresDesignStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE design_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete design %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return design.ErrDesignNotFound
	}
	return nil
}

func scanDesign(row *sql.Row) (*design.Design, error) {
	var d design.Design
	var elements []byte
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Width, &d.Height,
		&d.CanvasBackground, &elements, &d.Version, &d.LastModifiedAt, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, design.ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan design: %w", err)
	}
	if err := json.Unmarshal(elements, &d.Elements); err != nil {
		return nil, fmt.Errorf("unmarshal elements: %w", err)
	}
	return &d, nil
}

func nullString(fields map[string]interface{}, key string) sql.NullString {
	if v, ok := fields[key].(string); ok {
		return sql.NullString{String: v, Valid: true}
	}
	return sql.NullString{}
}

func nullInt(fields map[string]interface{}, key string) sql.NullInt64 {
	switch v := fields[key].(type) {
	case int:
		return sql.NullInt64{Int64: int64(v), Valid: true}
	case int64:
		return sql.NullInt64{Int64: v, Valid: true}
	case float64:
		return sql.NullInt64{Int64: int64(v), Valid: true}
	default:
		return sql.NullInt64{}
	}
}
