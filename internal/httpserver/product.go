package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func productPage(items []models.Product, total int64, page, offset, limit int) transport.ProductPage {
	return transport.ProductPage{
		Data: transport.NewProductList(items),
		Meta: transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: util.TotalPages(total, limit),
			HasPrev:    page > 1,
			HasNext:    int64(offset+limit) < total,
		},
	}
}

// GetProducts lists active products. Without page or size the whole list is
// returned as a plain array.
func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	q := transport.ProductQuery{
		Category: c.QueryParam("category"),
		Q:        c.QueryParam("q"),
	}

	paged := c.QueryParam("page") != "" || c.QueryParam("size") != ""
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	if paged {
		q.Offset, q.Limit = util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	}

	total, items, err := h.Svc.List(ctx, q)
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}

	l.Info("get_products_success", "count", len(items))
	if !paged {
		return c.JSON(http.StatusOK, transport.NewProductList(items))
	}
	return c.JSON(http.StatusOK, productPage(items, total, page, q.Offset, q.Limit))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return serviceError(l, "search_products_error", err)
	}

	l.Info("search_products_success", "count", len(items), "total", total)
	return c.JSON(http.StatusOK, productPage(items, total, page, offset, limit))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "get_product_error", c.Param("id"))
	}

	product, err := h.Svc.GetVisible(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "product_create_error", err)
	}

	product, err := h.Svc.Create(ctx, req)
	if err != nil {
		return serviceError(l, "product_create_error", err)
	}

	l.Info("product_create_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "product_patch_error", c.Param("id"))
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "product_patch_error", err)
	}

	product, err := h.Svc.Patch(ctx, id, req)
	if err != nil {
		return serviceError(l, "product_patch_error", err)
	}

	l.Info("product_patch_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return invalidID(l, "product_delete_error", c.Param("id"))
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(l, "product_delete_error", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
