package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves /products: the generic CRUD plus stock endpoints.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates the product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: newProductCatalogHandler(base, service),
		service:        service,
	}
}

// LowStock handles GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemsResponse{Items: dto.FromProducts(items)})
}

// UpdateStock handles PATCH /products/:id/stock with {delta} or {quantity}.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.StockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.Error(c, err)
		return
	}

	var (
		p   *product.Product
		err error
	)
	if req.Delta != nil {
		p, err = h.service.AdjustStock(c.Request.Context(), productID, *req.Delta)
	} else {
		p, err = h.service.SetStock(c.Request.Context(), productID, *req.Quantity)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}
