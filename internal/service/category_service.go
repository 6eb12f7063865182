package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/civitas-app/civitas-api/internal/models"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type categoryRepository interface {
	FindByCategory(ctx context.Context, category models.Category) (*models.CategoryRoleMapping, error)
	List(ctx context.Context) ([]models.CategoryRoleMapping, error)
	Upsert(ctx context.Context, category models.Category, roleID string) error
	Delete(ctx context.Context, category models.Category) error
}

type roleFinder interface {
	FindRoleByName(ctx context.Context, name models.RoleName) (*models.Role, error)
}

type routingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const routingCachePrefix = "routing:category:"

// CategoryService is the category router: it resolves the role
// accountable for each report category. The mapping table is read-mostly
// reference data, so resolutions are cached.
type CategoryService struct {
	repo     categoryRepository
	roles    roleFinder
	cache    routingCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCategoryService constructs the service. The cache is optional.
func NewCategoryService(repo categoryRepository, roles roleFinder, cache routingCache, cacheTTL time.Duration, logger *zap.Logger) *CategoryService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, roles: roles, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ResolveResponsibleRole returns the role mapped to the category, or nil
// when no mapping exists. The nil result is a valid state for categories
// awaiting configuration and is never surfaced as a failure.
func (s *CategoryService) ResolveResponsibleRole(ctx context.Context, category models.Category) (*models.RoleName, error) {
	if !category.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	key := routingCachePrefix + string(category)
	if s.cache != nil {
		var cached models.RoleName
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("routing cache read failed", zap.String("category", string(category)), zap.Error(err))
		}
	}

	mapping, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve responsible role")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, mapping.RoleName, s.cacheTTL); err != nil {
			s.logger.Warn("routing cache write failed", zap.String("category", string(category)), zap.Error(err))
		}
	}

	role := mapping.RoleName
	return &role, nil
}

// ListMappings returns every mapping in canonical category order.
func (s *CategoryService) ListMappings(ctx context.Context) ([]models.CategoryRoleMapping, error) {
	mappings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list category mappings")
	}
	return mappings, nil
}

// SetMapping assigns a role as responsible for a category, replacing any
// previous mapping and invalidating the cached resolution.
func (s *CategoryService) SetMapping(ctx context.Context, category models.Category, roleName models.RoleName) error {
	if !category.IsValid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}
	role, err := s.roles.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch role")
	}
	if models.IsStructuralRole(role.Name) {
		return appErrors.Clone(appErrors.ErrValidation, "structural roles cannot be responsible for a category")
	}
	if err := s.repo.Upsert(ctx, category, role.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set category mapping")
	}
	s.invalidate(ctx, category)
	return nil
}

// ClearMapping removes the mapping, returning the category to manual triage.
func (s *CategoryService) ClearMapping(ctx context.Context, category models.Category) error {
	if !category.IsValid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}
	if err := s.repo.Delete(ctx, category); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear category mapping")
	}
	s.invalidate(ctx, category)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, category models.Category) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, routingCachePrefix+string(category)); err != nil {
		s.logger.Warn("routing cache invalidation failed", zap.String("category", string(category)), zap.Error(err))
	}
}
