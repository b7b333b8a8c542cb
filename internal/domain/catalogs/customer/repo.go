package customer

import (
	"gestaopro/internal/domain"
)

// Repository defines the interface for Customer persistence.
// List search covers name, email and phone.
type Repository interface {
	domain.CatalogRepository[*Customer]
}
