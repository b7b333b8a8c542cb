package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/domain/expense"
	"gestaopro/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler serves /expenses.
type ExpenseHandler struct {
	*CatalogHandler[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]
	service *expense.Service
}

// NewExpenseHandler creates the expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{
		CatalogHandler: newExpenseCatalogHandler(base, service),
		service:        service,
	}
}

// MonthlyTotal handles GET /expenses/monthly-total?year=&month=
func (h *ExpenseHandler) MonthlyTotal(c *gin.Context) {
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
