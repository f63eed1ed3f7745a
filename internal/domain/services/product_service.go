package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
	"github.com/hugscape/storefront/internal/pkg/idgen"
)

var priceRe = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// ProductInput carries the writable attributes of a product
type ProductInput struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Price            string   `json:"price"`
	Category         string   `json:"category"`
	Sizes            []string `json:"sizes"`
	Colors           []string `json:"colors"`
	Images           []string `json:"images"`
	StockQuantity    int      `json:"stockQuantity"`
	Brand            string   `json:"brand"`
	Material         string   `json:"material"`
	CareInstructions string   `json:"careInstructions"`
}

// ProductService provides business logic for the catalog
type ProductService struct {
	productRepo repositories.ProductRepository
	sanitizer   *bluemonday.Policy
	now         func() time.Time
	log         *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo repositories.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		sanitizer:   bluemonday.StrictPolicy(),
		now:         time.Now,
		log:         slog.Default().With(slog.String("service", "product")),
	}
}

// ListActive returns the products currently on sale
func (s *ProductService) ListActive(ctx context.Context) ([]*entities.Product, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns a product by id, including inactive ones
func (s *ProductService) Get(ctx context.Context, id string) (*entities.Product, error) {
	product, found, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !found {
		return nil, repositories.ErrProductNotFound
	}
	return product, nil
}

// Create adds a product. New products are always active.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*entities.Product, error) {
	product, err := s.build(in)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.Info("product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug))
	return product, nil
}

// Update replaces every writable attribute of an existing product. The
// active flag is left alone.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*entities.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.build(in)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.IsActive = existing.IsActive
	updated.CreatedAt = existing.CreatedAt

	if err := s.productRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// Delete hides a product from the catalog without removing the row
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.productRepo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.log.Info("product deactivated", slog.String("product_id", id))
	return nil
}

// UpdateStock overwrites the stock level. Negative quantities are rejected.
func (s *ProductService) UpdateStock(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}
	if err := s.productRepo.SetStock(ctx, id, quantity); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the sample catalog when no products exist yet.
// It returns the number of products inserted.
func (s *ProductService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		s.log.Debug("catalog already populated, skipping seed", slog.Int64("count", count))
		return 0, nil
	}

	products := make([]*entities.Product, 0, len(sampleCatalog))
	for _, in := range sampleCatalog {
		p, err := s.build(in)
		if err != nil {
			return 0, fmt.Errorf("invalid sample product %q: %w", in.Name, err)
		}
		products = append(products, p)
	}

	if err := s.productRepo.CreateBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}

	s.log.Info("sample catalog seeded", slog.Int("count", len(products)))
	return len(products), nil
}

// build validates the input and returns a new active product
func (s *ProductService) build(in ProductInput) (*entities.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	price, err := normalizePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}

	now := s.now().UTC()
	return &entities.Product{
		ID:               idgen.GenerateID(),
		Slug:             slug.Make(name),
		Name:             name,
		Description:      s.sanitizer.Sanitize(in.Description),
		Price:            price,
		Category:         category,
		Sizes:            cleanList(in.Sizes),
		Colors:           cleanList(in.Colors),
		Images:           cleanList(in.Images),
		StockQuantity:    in.StockQuantity,
		Brand:            strings.TrimSpace(in.Brand),
		Material:         strings.TrimSpace(in.Material),
		CareInstructions: s.sanitizer.Sanitize(in.CareInstructions),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// normalizePrice accepts a non-negative decimal with at most two fraction
// digits and returns it with exactly two
func normalizePrice(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !priceRe.MatchString(raw) {
		return "", fmt.Errorf("%w: price %q is not a valid amount", ErrValidation, raw)
	}

	whole, frac, _ := strings.Cut(raw, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	return whole + "." + frac, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
