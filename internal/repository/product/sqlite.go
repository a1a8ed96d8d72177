package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoppingcart/internal/domain"
)

type sqliteRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLite returns a catalog stored in SQLite. Attributes are kept as JSON text.
func NewSQLite(db *sql.DB, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sqliteRepo{db: db, logger: logger.Named("product_repo")}
}

const sqliteColumns = `id, key, sku, name, description, price_cents, currency, attributes, created_at`

func (r *sqliteRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM products ORDER BY created_at DESC, key ASC`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanSQLiteProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *sqliteRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM products WHERE id = ?`, id)
	p, err := scanSQLiteProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("get not found", zap.String("product_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("get", zap.String("product_id", id), zap.String("key", p.Key))
	return p, nil
}

func (r *sqliteRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, key, sku, name, description, price_cents, currency, attributes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    sku = excluded.sku,
    name = excluded.name,
    description = excluded.description,
    price_cents = excluded.price_cents,
    currency = excluded.currency,
    attributes = excluded.attributes
RETURNING id, created_at
`
	id := product.ID
	if id == "" {
		id = uuid.NewString()
	}
	attrs := product.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	rawAttrs, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes for key %q: %w", product.Key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res := product
	var createdAt string
	err = r.db.QueryRowContext(ctx, q,
		id,
		product.Key,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Currency,
		string(rawAttrs),
		now,
	).Scan(&res.ID, &createdAt)
	if err != nil {
		r.logger.Error("upsert", zap.String("key", product.Key), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", product.Key, res.ID, product.ID)
	}
	if res.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for key %q: %w", product.Key, err)
	}
	r.logger.Info("upserted", zap.String("key", res.Key), zap.String("product_id", res.ID))
	return &res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProduct(row rowScanner) (*domain.Product, error) {
	var (
		p         domain.Product
		rawAttrs  string
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Key, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &rawAttrs, &createdAt); err != nil {
		return nil, err
	}
	if rawAttrs != "" {
		if err := json.Unmarshal([]byte(rawAttrs), &p.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", p.ID, err)
		}
		if len(p.Attributes) == 0 {
			p.Attributes = nil
		}
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", p.ID, err)
	}
	p.CreatedAt = ts
	return &p, nil
}
