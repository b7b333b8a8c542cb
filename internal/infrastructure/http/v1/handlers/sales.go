package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/domain"
	"gestaopro/internal/domain/audit"
	"gestaopro/internal/domain/sales"
	"gestaopro/internal/infrastructure/http/v1/dto"
)

const saleHistoryLimit = 50

// SalesHandler serves /sales.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
	audit   audit.Recorder
}

// NewSalesHandler creates the sales handler. A nil recorder disables /history.
func NewSalesHandler(base *BaseHandler, service *sales.Service, recorder audit.Recorder) *SalesHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
		audit:       recorder,
	}
}

// Create handles POST /sales
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSale(sale))
}

// Get handles GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSale(sale))
}

// Update handles PATCH /sales/:id
func (h *SalesHandler) Update(c *gin.Context) {
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Update(c.Request.Context(), saleID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// Delete handles DELETE /sales/:id. Stock of the lines is restored.
func (h *SalesHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /sales?page=&limit=&search=&categories=&products=&startDate=&endDate=
func (h *SalesHandler) List(c *gin.Context) {
	var req dto.SaleListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := domain.DefaultListFilter()
	filter.Paginate(req.Page, req.Limit)
	filter.Search = req.Search
	filter.OrderBy = req.OrderBy

	var err error
	if filter.CategoryIDs, err = parseIDList(req.Categories, "categories"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.ProductIDs, err = parseIDList(req.Products, "products"); err != nil {
		h.Error(c, err)
		return
	}
	if err := parseDateRange(c, &filter); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.SaleResponse, len(result.Items))
	for i, s := range result.Items {
		items[i] = dto.FromSale(s)
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, result.TotalCount, result.Limit, result.Offset))
}

// MonthlyTotal handles GET /sales/monthly-total?year=&month=
func (h *SalesHandler) MonthlyTotal(c *gin.Context) {
	var req dto.MonthRequest
	if !h.BindQuery(c, &req) {
		return
	}

	total, err := h.service.MonthlyTotal(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

// TopProducts handles GET /sales/top-products?limit=&startDate=&endDate=
func (h *SalesHandler) TopProducts(c *gin.Context) {
	var req dto.TopProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var window domain.ListFilter
	if err := parseDateRange(c, &window); err != nil {
		h.Error(c, err)
		return
	}

	top, err := h.service.TopProducts(c.Request.Context(), req.Limit, window.DateFrom, window.DateTo)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemsResponse{Items: top})
}

// History handles GET /sales/:id/history
func (h *SalesHandler) History(c *gin.Context) {
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	// Ownership check; the audit log itself is not partitioned by owner.
	if _, err := h.service.GetByID(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.History(c.Request.Context(), "sale", saleID, saleHistoryLimit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ItemsResponse{Items: dto.FromAuditEntries(entries)})
}
