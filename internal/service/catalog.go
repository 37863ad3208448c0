package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

// ProductIndexer is the full-text side of the catalog. The database stays
// the source of truth; the index only ranks ids.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndexer
}

// List returns active products only.
func (s *CatalogService) List(ctx context.Context, q transport.ProductQuery) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, repo.ProductFilter{
		Category:   strings.TrimSpace(q.Category),
		Query:      strings.TrimSpace(q.Q),
		ActiveOnly: true,
		Offset:     q.Offset,
		Limit:      q.Limit,
	})
}

// Get returns the product whatever its active flag.
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

// GetVisible hides inactive products from the public catalog.
func (s *CatalogService) GetVisible(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, nil
}

// Search ranks through the index when one is configured and falls back to
// substring matching in the database otherwise.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if s.Index == nil || query == "" {
		return s.List(ctx, transport.ProductQuery{Q: query, Offset: offset, Limit: limit})
	}

	total, ids, err := s.Index.Search(ctx, query, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "svc", "catalog.search", "error", err)
		return s.List(ctx, transport.ProductQuery{Q: query, Offset: offset, Limit: limit})
	}
	products, err := s.Repo.GetActiveProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	return total, products, nil
}

func validateProductFields(name, image, category, brand string) error {
	if strings.TrimSpace(name) == "" {
		return fieldError("name", "This field may not be blank.")
	}
	if tooLong(name, maxProductNameLen) {
		return fieldError("name", "Ensure this field has no more than 200 characters.")
	}
	if tooLong(image, maxImageLen) {
		return fieldError("image", "Ensure this field has no more than 200 characters.")
	}
	if tooLong(category, maxCategoryLen) {
		return fieldError("category", "Ensure this field has no more than 80 characters.")
	}
	if tooLong(brand, maxBrandLen) {
		return fieldError("brand", "Ensure this field has no more than 100 characters.")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil {
		return nil, fieldError("price", "This field is required.")
	}
	if err := checkPrice("price", *req.Price); err != nil {
		return nil, err
	}
	if err := validateProductFields(req.Name, req.Image, req.Category, req.Brand); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	prod := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price.Round(2),
		Image:       req.Image,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Brand:       strings.TrimSpace(req.Brand),
		Active:      active,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) Patch(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if err := checkPrice("price", *req.Price); err != nil {
			return nil, err
		}
		prod.Price = req.Price.Round(2)
	}
	if req.Image != nil {
		prod.Image = *req.Image
	}
	if req.Category != nil {
		prod.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Brand != nil {
		prod.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Active != nil {
		prod.Active = *req.Active
	}
	if err := validateProductFields(prod.Name, prod.Image, prod.Category, prod.Brand); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "svc", "catalog.delete", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, typ string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *p); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "svc", "catalog."+typ, "product_id", p.ID, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"type":      typ,
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price.StringFixed(2),
		"active":    p.Active,
	})
}
