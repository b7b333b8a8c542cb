// Package customer provides customer contact records.
package customer

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/entity"
)

var validate = validator.New()

// Customer is a contact record. Sales reference customers weakly.
type Customer struct {
	entity.BaseEntity

	Name    string  `db:"name" json:"name"`
	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
	Notes   *string `db:"notes" json:"notes,omitempty"`
}

// NewCustomer creates a new Customer.
func NewCustomer(name string) *Customer {
	return &Customer{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(_ context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}

	c.Email = trimOptional(c.Email)
	c.Phone = trimOptional(c.Phone)
	c.Address = trimOptional(c.Address)
	c.Notes = trimOptional(c.Notes)

	if c.Email != nil {
		if err := validate.Var(*c.Email, "email"); err != nil {
			return apperror.NewFieldValidation("email", "invalid email address").
				WithDetail("value", *c.Email)
		}
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
