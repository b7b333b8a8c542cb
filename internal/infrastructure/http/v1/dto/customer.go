package dto

import (
	"time"

	"gestaopro/internal/domain/catalogs/customer"
)

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Name)
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.Notes = r.Notes
	return c
}

// UpdateCustomerRequest is a partial update.
type UpdateCustomerRequest struct {
	Name    *string          `json:"name"`
	Email   Nullable[string] `json:"email"`
	Phone   Nullable[string] `json:"phone"`
	Address Nullable[string] `json:"address"`
	Notes   Nullable[string] `json:"notes"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email.Set {
		c.Email = r.Email.Value
	}
	if r.Phone.Set {
		c.Phone = r.Phone.Value
	}
	if r.Address.Set {
		c.Address = r.Address.Value
	}
	if r.Notes.Set {
		c.Notes = r.Notes.Value
	}
}

// CustomerResponse is the response body for a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromCustomer creates response DTO from domain entity.
func FromCustomer(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
