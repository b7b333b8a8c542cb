package catalog_repo

import (
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: newBaseCatalogRepo(txm, tableSpec{
			table:        "customers",
			entity:       "customer",
			searchCols:   []string{"name", "email", "phone"},
			sortable:     map[string]string{"name": "lower(name)"},
			defaultOrder: "lower(name) ASC",
		}, postgres.ExtractDBColumns[customer.Customer](), func() *customer.Customer { return &customer.Customer{} }),
	}
}
