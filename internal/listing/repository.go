package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Repository provides catalog storage for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, city, state, country, rating, price, bed, shower, occupants, image, discount, description`

// Upsert stores p keyed by its name, replacing any categories and reviews
// previously stored for it. The stored property is returned.
func (r *Repository) Upsert(ctx context.Context, p *Property) (*Property, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("property name is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit
		_ = tx.Rollback()
	}()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM properties WHERE name = ?", p.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = p.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO properties (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.Name, p.Address.City, p.Address.State, p.Address.Country,
			p.Rating, p.Price, p.Offers.Bed, p.Offers.Shower, p.Offers.Occupants,
			p.Image, p.Discount, p.Description,
		); err != nil {
			return nil, fmt.Errorf("inserting property: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("looking up property %q: %w", p.Name, err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE properties SET city = ?, state = ?, country = ?, rating = ?, price = ?,
				bed = ?, shower = ?, occupants = ?, image = ?, discount = ?, description = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			p.Address.City, p.Address.State, p.Address.Country, p.Rating, p.Price,
			p.Offers.Bed, p.Offers.Shower, p.Offers.Occupants, p.Image, p.Discount, p.Description,
			id,
		); err != nil {
			return nil, fmt.Errorf("updating property: %w", err)
		}
	}

	if err := replaceChildren(ctx, tx, id, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing property: %w", err)
	}

	return r.GetByName(ctx, p.Name)
}

// replaceChildren rewrites the ordered categories and reviews of a property.
func replaceChildren(ctx context.Context, tx *sql.Tx, id string, p *Property) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM property_categories WHERE property_id = ?", id); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE property_id = ?", id); err != nil {
		return fmt.Errorf("clearing reviews: %w", err)
	}

	for i, c := range p.Category {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO property_categories (property_id, position, name) VALUES (?, ?, ?)",
			id, i, c,
		); err != nil {
			return fmt.Errorf("inserting category %q: %w", c, err)
		}
	}

	for i, rv := range p.Reviews {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reviews (property_id, position, avatar, name, rating, comment) VALUES (?, ?, ?, ?, ?, ?)",
			id, i, rv.Avatar, rv.Name, rv.Rating, rv.Comment,
		); err != nil {
			return fmt.Errorf("inserting review %d: %w", i, err)
		}
	}

	return nil
}

// GetByName returns the property with the given display name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE name = ?", selectColumns)
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %q: %w", name, err)
	}

	if err := r.loadChildren(ctx, map[string]*Property{p.ID: p}, "WHERE property_id = ?", p.ID); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns every property in catalog order (oldest first).
func (r *Repository) List(ctx context.Context) ([]*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties ORDER BY created_at, rowid", selectColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var properties []*Property
	byID := make(map[string]*Property)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	if len(properties) == 0 {
		return properties, nil
	}

	if err := r.loadChildren(ctx, byID, ""); err != nil {
		return nil, err
	}

	return properties, nil
}

// Delete removes a property by name. Categories and reviews cascade.
func (r *Repository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM properties WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %q: %w", name, ErrNotFound)
	}

	return nil
}

// loadChildren fills Category and Reviews for the properties in byID,
// in stored position order. where/args narrow both child queries.
func (r *Repository) loadChildren(ctx context.Context, byID map[string]*Property, where string, args ...interface{}) error {
	catRows, err := r.db.QueryContext(ctx,
		"SELECT property_id, name FROM property_categories "+where+" ORDER BY property_id, position", args...)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	for catRows.Next() {
		var propID, name string
		if err := catRows.Scan(&propID, &name); err != nil {
			_ = catRows.Close()
			return fmt.Errorf("scanning category: %w", err)
		}
		if p, ok := byID[propID]; ok {
			p.Category = append(p.Category, name)
		}
	}
	if err := catRows.Err(); err != nil {
		_ = catRows.Close()
		return fmt.Errorf("iterating categories: %w", err)
	}
	if err := catRows.Close(); err != nil {
		return fmt.Errorf("closing category rows: %w", err)
	}

	revRows, err := r.db.QueryContext(ctx,
		"SELECT property_id, avatar, name, rating, comment FROM reviews "+where+" ORDER BY property_id, position", args...)
	if err != nil {
		return fmt.Errorf("listing reviews: %w", err)
	}
	for revRows.Next() {
		var propID string
		var rv Review
		if err := revRows.Scan(&propID, &rv.Avatar, &rv.Name, &rv.Rating, &rv.Comment); err != nil {
			_ = revRows.Close()
			return fmt.Errorf("scanning review: %w", err)
		}
		if p, ok := byID[propID]; ok {
			p.Reviews = append(p.Reviews, rv)
		}
	}
	if err := revRows.Err(); err != nil {
		_ = revRows.Close()
		return fmt.Errorf("iterating reviews: %w", err)
	}
	if err := revRows.Close(); err != nil {
		return fmt.Errorf("closing review rows: %w", err)
	}

	return nil
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.Name, &p.Address.City, &p.Address.State, &p.Address.Country,
		&p.Rating, &p.Price, &p.Offers.Bed, &p.Offers.Shower, &p.Offers.Occupants,
		&p.Image, &p.Discount, &p.Description,
	)
	if err != nil {
		return nil, err
	}
	p.Category = []string{}
	return &p, nil
}
