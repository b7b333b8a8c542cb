package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/expense"
	"gestaopro/internal/infrastructure/http/v1/dto"
)

// CategoryHTTPHandler serves /categories.
type CategoryHTTPHandler = CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service:    service.CatalogService,
		EntityName: "category",
		MapCreateDTO: func(req dto.CreateCategoryRequest) *category.Category {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) *category.Category {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *category.Category) any { return dto.FromCategory(c) },
	})
}

// CustomerHTTPHandler serves /customers.
type CustomerHTTPHandler = CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *customer.Customer) any { return dto.FromCustomer(c) },
	})
}

// newProductCatalogHandler builds the generic part of the product endpoints.
func newProductCatalogHandler(base *BaseHandler, service *product.Service) *CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *product.Product) any { return dto.FromProduct(p) },
		ListFilter: func(c *gin.Context, filter *domain.ListFilter) error {
			ids, err := parseIDList(c.Query("categories"), "categories")
			if err != nil {
				return err
			}
			filter.CategoryIDs = ids
			return nil
		},
	})
}

// newExpenseCatalogHandler builds the generic part of the expense endpoints.
func newExpenseCatalogHandler(base *BaseHandler, service *expense.Service) *CatalogHandler[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*expense.Expense, dto.CreateExpenseRequest, dto.UpdateExpenseRequest]{
		Service:    service.CatalogService,
		EntityName: "expense",
		MapCreateDTO: func(req dto.CreateExpenseRequest) *expense.Expense {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateExpenseRequest, existing *expense.Expense) *expense.Expense {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(e *expense.Expense) any { return dto.FromExpense(e) },
		ListFilter: func(c *gin.Context, filter *domain.ListFilter) error {
			filter.Category = strings.TrimSpace(c.Query("category"))
			return parseDateRange(c, filter)
		},
	})
}

// parseIDList parses a comma-separated id list. Empty input yields nil.
func parseIDList(raw, field string) ([]id.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	ids, err := id.ParseList(values)
	if err != nil {
		return nil, apperror.NewFieldValidation(field, "invalid id in list").WithDetail("value", raw)
	}
	return ids, nil
}

// parseDateRange reads startDate/endDate. A calendar endDate covers the whole day.
func parseDateRange(c *gin.Context, filter *domain.ListFilter) error {
	if raw := c.Query("startDate"); raw != "" {
		from, err := dto.ParseDate(raw)
		if err != nil {
			return err
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("endDate"); raw != "" {
		to, err := dto.ParseDate(raw)
		if err != nil {
			return err
		}
		if isDateOnly(raw) {
			to = to.AddDate(0, 0, 1).Add(-1)
		}
		filter.DateTo = &to
	}
	return nil
}

func isDateOnly(raw string) bool {
	return len(strings.TrimSpace(raw)) == len("2006-01-02")
}
