// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/clubhouse/internal/core"
)

const listCacheKey = "list"

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service serves the catalogue read-through a cache. Cache failures are
// logged and fall back to the database.
type Service struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(repo Repository, cache Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Course, error) {
	if s.cache != nil {
		var cached []Course
		err := s.cache.Get(ctx, listCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, core.ErrCacheMiss) {
			s.logger.Warn("course cache read failed", "error", err)
		}
	}

	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, listCacheKey, courses, s.ttl); err != nil {
			s.logger.Warn("course cache write failed", "error", err)
		}
	}

	return courses, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	c := &Course{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Holes:       req.Holes,
		Par:         req.Par,
		Location:    req.Location,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError(
				fmt.Sprintf("course %q already exists", req.Name),
				core.CodeConflict,
			)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, listCacheKey); err != nil {
			s.logger.Warn("course cache invalidation failed", "error", err)
		}
	}

	return c, nil
}
