// Package entity holds the fields and contracts shared by all stored records.
package entity

import (
	"context"
	"time"

	"gestaopro/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Owned is implemented by every record partitioned by owner.
type Owned interface {
	GetID() id.ID
	GetOwnerID() id.ID
	SetOwnerID(owner id.ID)
}

// BaseEntity contains the common fields of every owner-scoped record.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// OwnerID is the user that owns this record
	OwnerID id.ID `db:"owner_id" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *BaseEntity) GetID() id.ID           { return b.ID }
func (b *BaseEntity) GetOwnerID() id.ID      { return b.OwnerID }
func (b *BaseEntity) SetOwnerID(owner id.ID) { b.OwnerID = owner }

// Touch updates the UpdatedAt timestamp.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
