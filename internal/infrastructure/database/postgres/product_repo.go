package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/pkg/idgen"
	"github.com/hugscape/storefront/internal/pkg/metrics"
)

// ProductRepository implements the ProductRepository interface for PostgreSQL
type ProductRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) repositories.ProductRepository {
	return &ProductRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "product")),
	}
}

const productColumns = `id, slug, name, description, price, category, sizes, colors, images,
		stock_quantity, brand, material, care_instructions, is_active, created_at, updated_at`

const insertProduct = `INSERT INTO products (` + productColumns + `) VALUES (
		:id, :slug, :name, :description, :price, :category, :sizes, :colors, :images,
		:stock_quantity, :brand, :material, :care_instructions, :is_active, :created_at, :updated_at
	)`

// productRow represents a product as stored in the database
type productRow struct {
	ID               string         `db:"id"`
	Slug             string         `db:"slug"`
	Name             string         `db:"name"`
	Description      sql.NullString `db:"description"`
	Price            string         `db:"price"`
	Category         string         `db:"category"`
	Sizes            pq.StringArray `db:"sizes"`
	Colors           pq.StringArray `db:"colors"`
	Images           pq.StringArray `db:"images"`
	StockQuantity    int            `db:"stock_quantity"`
	Brand            sql.NullString `db:"brand"`
	Material         sql.NullString `db:"material"`
	CareInstructions sql.NullString `db:"care_instructions"`
	IsActive         bool           `db:"is_active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r *productRow) toEntity() *entities.Product {
	return &entities.Product{
		ID:               r.ID,
		Slug:             r.Slug,
		Name:             r.Name,
		Description:      r.Description.String,
		Price:            r.Price,
		Category:         r.Category,
		Sizes:            nonNil(r.Sizes),
		Colors:           nonNil(r.Colors),
		Images:           nonNil(r.Images),
		StockQuantity:    r.StockQuantity,
		Brand:            r.Brand.String,
		Material:         r.Material.String,
		CareInstructions: r.CareInstructions.String,
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func productRowFromEntity(p *entities.Product) *productRow {
	return &productRow{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             p.Name,
		Description:      nullString(p.Description),
		Price:            p.Price,
		Category:         p.Category,
		Sizes:            nonNil(p.Sizes),
		Colors:           nonNil(p.Colors),
		Images:           nonNil(p.Images),
		StockQuantity:    p.StockQuantity,
		Brand:            nullString(p.Brand),
		Material:         nullString(p.Material),
		CareInstructions: nullString(p.CareInstructions),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// nonNil keeps empty lists as '{}' rather than NULL and [] rather than null
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func prepareNew(p *entities.Product) {
	if p.ID == "" {
		p.ID = idgen.GenerateID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *entities.Product) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("product", "create", time.Since(start), 1, err)
	}()

	prepareNew(product)
	_, err = r.db.NamedExecContext(ctx, insertProduct, productRowFromEntity(product))
	if err != nil {
		err = translateError(err, "failed to create product")
		return err
	}
	return nil
}

// CreateBatch inserts all products in one transaction
func (r *ProductRepository) CreateBatch(ctx context.Context, products []*entities.Product) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("product", "create_batch", time.Since(start), int64(len(products)), err)
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("failed to begin transaction: %w", err)
		return err
	}
	defer tx.Rollback()

	for _, p := range products {
		prepareNew(p)
		if _, err = tx.NamedExecContext(ctx, insertProduct, productRowFromEntity(p)); err != nil {
			err = translateError(err, fmt.Sprintf("failed to insert product %q", p.Name))
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit products: %w", err)
		return err
	}

	r.log.Debug("inserted product batch", slog.Int("count", len(products)))
	return nil
}

// Update persists every attribute of an existing product
func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("product", "update", time.Since(start), rows, err)
	}()

	product.UpdatedAt = time.Now().UTC()

	query := `UPDATE products SET
			slug = :slug,
			name = :name,
			description = :description,
			price = :price,
			category = :category,
			sizes = :sizes,
			colors = :colors,
			images = :images,
			stock_quantity = :stock_quantity,
			brand = :brand,
			material = :material,
			care_instructions = :care_instructions,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, productRowFromEntity(product))
	if err != nil {
		err = translateError(err, "failed to update product")
		return err
	}
	return r.requireRow(result, &rows, &err)
}

// FindByID looks up a product regardless of active status
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entities.Product, bool, error) {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("product", "find_by_id", time.Since(start), rows, err)
	}()

	var row productRow
	err = r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to get product: %w", err)
		return nil, false, err
	}

	rows = 1
	return row.toEntity(), true, nil
}

// ListActive returns active products, oldest first
func (r *ProductRepository) ListActive(ctx context.Context) ([]*entities.Product, error) {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("product", "list_active", time.Since(start), rows, err)
	}()

	var productRows []productRow
	err = r.db.SelectContext(ctx, &productRows,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY created_at, id`)
	if err != nil {
		err = fmt.Errorf("failed to list products: %w", err)
		return nil, err
	}

	rows = int64(len(productRows))
	products := make([]*entities.Product, len(productRows))
	for i := range productRows {
		products[i] = productRows[i].toEntity()
	}
	return products, nil
}

// SetActive flips the active flag
func (r *ProductRepository) SetActive(ctx context.Context, id string, active bool) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("product", "set_active", time.Since(start), rows, err)
	}()

	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		err = fmt.Errorf("failed to set product active flag: %w", err)
		return err
	}
	return r.requireRow(result, &rows, &err)
}

// SetStock overwrites the stock quantity
func (r *ProductRepository) SetStock(ctx context.Context, id string, quantity int) error {
	start := time.Now()
	var err error
	var rows int64
	defer func() {
		metrics.RecordDBOperation("product", "set_stock", time.Since(start), rows, err)
	}()

	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	if err != nil {
		err = fmt.Errorf("failed to set product stock: %w", err)
		return err
	}
	return r.requireRow(result, &rows, &err)
}

// Count returns the number of products, active or not
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("product", "count", time.Since(start), -1, err)
	}()

	var count int64
	if err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		err = fmt.Errorf("failed to count products: %w", err)
		return 0, err
	}
	return count, nil
}

// requireRow reports ErrProductNotFound when the statement touched nothing.
// rows and errp feed the caller's deferred metrics.
func (r *ProductRepository) requireRow(result sql.Result, rows *int64, errp *error) error {
	n, err := result.RowsAffected()
	if err != nil {
		*errp = fmt.Errorf("failed to get rows affected: %w", err)
		return *errp
	}
	*rows = n
	if n == 0 {
		*errp = repositories.ErrProductNotFound
		return *errp
	}
	return nil
}
