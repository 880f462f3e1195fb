package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// MappingRepo maintains product→activity mappings: which activity and
// ticket category a product name printed on a supplier ticket stands for.
type MappingRepo struct {
	db *sql.DB
}

// NewMappingRepo constructs a MappingRepo over db.
func NewMappingRepo(db *sql.DB) *MappingRepo {
	return &MappingRepo{db: db}
}

const mappingColumns = `id, product_name, activity_id, ticket_category_id, source, created_at`

func scanMapping(rows *sql.Rows) (model.ProductMapping, error) {
	var (
		m      model.ProductMapping
		source sql.NullString
	)
	err := rows.Scan(&m.ID, &m.ProductName, &m.ActivityID, &m.TicketCategoryID, &source, &m.CreatedAt)
	if source.Valid {
		s := source.String
		m.Source = &s
	}
	return m, err
}

// List returns every mapping ordered by product name.
func (r *MappingRepo) List(ctx context.Context) ([]model.ProductMapping, error) {
	return queryRows(ctx, r.db,
		`SELECT `+mappingColumns+` FROM product_activity_mappings ORDER BY product_name, id`, nil, scanMapping)
}

// ListProduct returns the mappings of one product.
func (r *MappingRepo) ListProduct(ctx context.Context, product string) ([]model.ProductMapping, error) {
	return queryRows(ctx, r.db,
		`SELECT `+mappingColumns+` FROM product_activity_mappings WHERE product_name = ? ORDER BY id`,
		[]any{strings.TrimSpace(product)}, scanMapping)
}

// ListTicketCategories returns the categories offered by the mapping editor.
func (r *MappingRepo) ListTicketCategories(ctx context.Context) ([]model.TicketCategory, error) {
	return queryRows(ctx, r.db, `SELECT id, name, class FROM ticket_categories ORDER BY name, id`, nil,
		func(rows *sql.Rows) (model.TicketCategory, error) {
			var c model.TicketCategory
			err := rows.Scan(&c.ID, &c.Name, &c.Class)
			return c, err
		})
}

// Create maps a product that has no mappings yet. A product that is
// already mapped yields ErrConflict; use Replace to edit it.
func (r *MappingRepo) Create(ctx context.Context, product string, links []model.ProductMapping) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	product = strings.TrimSpace(product)
	var n int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_activity_mappings WHERE product_name = ? FOR UPDATE`, product).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return insertLinks(ctx, tx, product, links)
}

// Replace swaps every mapping of product for links in a single
// transaction, so the product is never observed unmapped. A product with
// no existing mapping yields ErrNotFound.
func (r *MappingRepo) Replace(ctx context.Context, product string, links []model.ProductMapping) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	product = strings.TrimSpace(product)
	res, err := tx.ExecContext(ctx, `DELETE FROM product_activity_mappings WHERE product_name = ?`, product)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return insertLinks(ctx, tx, product, links)
}

// Delete removes every mapping of product.
func (r *MappingRepo) Delete(ctx context.Context, product string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM product_activity_mappings WHERE product_name = ?`, strings.TrimSpace(product))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertLinks validates links against the ticket categories they name and
// inserts them for product.
func insertLinks(ctx context.Context, tx *sql.Tx, product string, links []model.ProductMapping) error {
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.TicketCategoryID)
	}
	categories := map[int64]model.TicketCategory{}
	if len(ids) > 0 {
		where, args := inFilter("id", ids, nil)
		rows, err := tx.QueryContext(ctx, `SELECT id, name, class FROM ticket_categories WHERE 1=1`+where, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var c model.TicketCategory
			if err := rows.Scan(&c.ID, &c.Name, &c.Class); err != nil {
				rows.Close()
				return err
			}
			categories[c.ID] = c
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	links, err := ValidateLinks(product, links, categories)
	if err != nil {
		return err
	}
	for _, l := range links {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_activity_mappings (product_name, activity_id, ticket_category_id, source) VALUES (?, ?, ?, ?)`,
			product, l.ActivityID, l.TicketCategoryID, l.Source); err != nil {
			return translate(err)
		}
	}
	return nil
}

// ValidateLinks checks a product's mapping set and returns it normalized:
// trimmed activity ids and upper-cased source tags, empty tags dropped.
// Every link needs an activity and a known ticket category; a source tag
// must be B2C or B2B and is only allowed on entrance categories; the same
// activity/category pair may appear once.
func ValidateLinks(product string, links []model.ProductMapping, categories map[int64]model.TicketCategory) ([]model.ProductMapping, error) {
	if strings.TrimSpace(product) == "" {
		return nil, fmt.Errorf("%w: product name required", ErrInvalidMapping)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: at least one activity required", ErrInvalidMapping)
	}

	type pair struct {
		activity string
		category int64
	}
	seen := map[pair]bool{}
	out := make([]model.ProductMapping, 0, len(links))
	for _, l := range links {
		l.ProductName = strings.TrimSpace(product)
		l.ActivityID = strings.TrimSpace(l.ActivityID)
		if l.ActivityID == "" {
			return nil, fmt.Errorf("%w: activity id required", ErrInvalidMapping)
		}
		cat, ok := categories[l.TicketCategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown ticket category %d", ErrInvalidMapping, l.TicketCategoryID)
		}
		if l.Source != nil {
			s := strings.ToUpper(strings.TrimSpace(*l.Source))
			switch {
			case s == "":
				l.Source = nil
			case s != model.SourceB2C && s != model.SourceB2B:
				return nil, fmt.Errorf("%w: source %q", ErrInvalidMapping, *l.Source)
			case !strings.EqualFold(cat.Class, model.TicketClassEntrance):
				return nil, fmt.Errorf("%w: category %q", ErrSourceNotAllowed, cat.Name)
			default:
				l.Source = &s
			}
		}
		k := pair{l.ActivityID, l.TicketCategoryID}
		if seen[k] {
			return nil, fmt.Errorf("%w: activity %s listed twice for category %d", ErrInvalidMapping, l.ActivityID, l.TicketCategoryID)
		}
		seen[k] = true
		out = append(out, l)
	}
	return out, nil
}
