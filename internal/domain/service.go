package domain

import (
	"context"
	"fmt"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/entity"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/tx"
	"gestaopro/pkg/logger"
)

// Entity is the constraint for records managed by CatalogService.
type Entity interface {
	entity.Validatable
	entity.Owned
	Touch()
}

// CatalogService provides the shared CRUD workflow of the simple stores
// (categories, products, customers, expenses).
type CatalogService[T Entity] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Entity] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T Entity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

func (s *CatalogService[T]) runAfter(ctx context.Context, event HookEvent, e T) {
	if err := s.hooks.Run(ctx, event, e); err != nil {
		logger.Warn(ctx, "after hook failed", "entity", s.entityName, "event", event, "error", err)
	}
}

// Create validates and stores a new entity for the current owner.
func (s *CatalogService[T]) Create(ctx context.Context, e T) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	e.SetOwnerID(ownerID)

	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, e); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterCreate, e)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		var zero T
		return zero, err
	}
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return e, s.normalizeGetErr(err, entityID)
	}
	return e, nil
}

// Update validates and persists an entity previously loaded with GetByID.
func (s *CatalogService[T]) Update(ctx context.Context, e T) error {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return err
	}
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	e.Touch()

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeUpdate, e); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, e); err != nil {
			if apperror.IsAppError(err) {
				return s.normalizeGetErr(err, e.GetID())
			}
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterUpdate, e)
	return nil
}

// Delete removes an entity.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	_, err := s.BulkDelete(ctx, []id.ID{entityID})
	return err
}

// BulkDelete removes all listed entities atomically.
// A single missing id fails the whole operation with not-found.
func (s *CatalogService[T]) BulkDelete(ctx context.Context, ids []id.ID) (int, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperror.NewFieldValidation("ids", "at least one id is required")
	}

	deleted := make([]T, 0, len(ids))
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, entityID := range ids {
			e, err := s.repo.GetByID(ctx, entityID)
			if err != nil {
				return s.normalizeGetErr(err, entityID)
			}
			if err := s.hooks.Run(ctx, BeforeDelete, e); err != nil {
				return err
			}
			if err := s.repo.Delete(ctx, entityID); err != nil {
				if apperror.IsAppError(err) {
					return s.normalizeGetErr(err, entityID)
				}
				return fmt.Errorf("delete %s: %w", s.entityName, err)
			}
			deleted = append(deleted, e)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, e := range deleted {
		s.runAfter(ctx, AfterDelete, e)
	}
	return len(deleted), nil
}

// List retrieves entities with filtering and pagination.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return ListResult[T]{}, err
	}
	if filter.Limit <= 0 || filter.Limit > MaxPageSize {
		filter.Limit = DefaultListFilter().Limit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Search returns up to limit entities whose searchable fields contain q.
func (s *CatalogService[T]) Search(ctx context.Context, q string, limit int) ([]T, error) {
	filter := DefaultListFilter()
	filter.Search = q
	if limit > 0 {
		filter.Limit = limit
	}
	res, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
