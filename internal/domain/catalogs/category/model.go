// Package category provides the product category taxonomy.
package category

import (
	"context"
	"strings"
	"unicode/utf8"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/entity"
)

// MaxNameLength is the maximum category name length in characters.
const MaxNameLength = 100

// Category groups products. Names are unique per owner, ignoring case.
type Category struct {
	entity.BaseEntity

	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category.
func NewCategory(name string, description *string) *Category {
	c := &Category{
		BaseEntity:  entity.NewBaseEntity(),
		Name:        name,
		Description: description,
	}
	c.Normalize()
	return c
}

// Normalize trims the name and clears a blank description.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Description != nil && strings.TrimSpace(*c.Description) == "" {
		c.Description = nil
	}
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(_ context.Context) error {
	c.Normalize()
	if c.Name == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}
	if utf8.RuneCountInString(c.Name) > MaxNameLength {
		return apperror.NewFieldValidation("name", "name must be at most 100 characters")
	}
	return nil
}
