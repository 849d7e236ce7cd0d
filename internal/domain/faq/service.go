package faq

import (
	"context"
	"log/slog"

	apperrors "github.com/yanqian/faq-kb/pkg/errors"
)

// Service exposes the FAQ knowledge-base operations.
type Service interface {
	List(ctx context.Context) ([]Record, error)
	ListByDepartment(ctx context.Context, department string) ([]Record, error)
	Create(ctx context.Context, req CreateRequest) (Record, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Record, error)
	Search(ctx context.Context, query string) ([]Record, error)
	Delete(ctx context.Context, id string) (Record, error)
}

type service struct {
	cfg    Config
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, repo Repository, cache Cache, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		logger: logger.With("component", "faq.service"),
	}
}

func (s *service) List(ctx context.Context) ([]Record, error) {
	records, err := s.cachedList(ctx, cacheKeyAll, s.repo.FindAll)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while fetching questions", err)
	}
	if len(records) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNoResults, "no questions found", nil)
	}
	return records, nil
}

func (s *service) ListByDepartment(ctx context.Context, department string) ([]Record, error) {
	canonical := NormalizeDepartment(department)
	if canonical == "" {
		return nil, invalid("department name parameter is required")
	}
	records, err := s.cachedList(ctx, departmentCacheKey(canonical), func(ctx context.Context) ([]Record, error) {
		return s.repo.FindByDepartment(ctx, canonical)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while fetching questions", err)
	}
	if len(records) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNoResults, "no questions found for this department", nil)
	}
	return records, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (Record, error) {
	record, err := BuildRecord(req)
	if err != nil {
		return Record{}, err
	}
	created, err := s.repo.Insert(ctx, record)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while adding the question", err)
	}
	s.invalidate(ctx)
	s.logger.Info("faq record created", "id", created.ID, "department", created.Department, "intent", created.Intent)
	return created, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (Record, error) {
	id, err := requireID(id)
	if err != nil {
		return Record{}, err
	}
	patch, err := BuildPatch(req)
	if err != nil {
		return Record{}, err
	}
	updated, found, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while updating the question", err)
	}
	if !found {
		return Record{}, apperrors.Wrap(apperrors.CodeNotFound, "question not found with this id", nil)
	}
	s.invalidate(ctx)
	s.logger.Info("faq record updated", "id", updated.ID)
	return updated, nil
}

func (s *service) Search(ctx context.Context, raw string) ([]Record, error) {
	query, err := ParseSearchQuery(raw)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while searching for questions", err)
	}
	if len(records) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeNoResults, "no matching questions found", nil)
	}
	return records, nil
}

func (s *service) Delete(ctx context.Context, id string) (Record, error) {
	id, err := requireID(id)
	if err != nil {
		return Record{}, err
	}
	deleted, found, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodePersistenceError, "an error occurred while deleting the question", err)
	}
	if !found {
		return Record{}, apperrors.Wrap(apperrors.CodeNotFound, "question not found with this id", nil)
	}
	s.invalidate(ctx)
	s.logger.Info("faq record deleted", "id", deleted.ID)
	return deleted, nil
}

func (s *service) cachingEnabled() bool {
	return s.cache != nil && s.cfg.CacheTTL > 0
}

// cachedList serves key from the cache when possible. The generation is read
// before load runs, so a write that lands mid-load orphans the save instead of
// reviving stale rows. Cache failures only degrade to a direct repository read.
func (s *service) cachedList(ctx context.Context, key string, load func(context.Context) ([]Record, error)) ([]Record, error) {
	gen, cacheable := s.cacheGeneration(ctx)
	if cacheable {
		cached, ok, err := s.cache.GetRecords(ctx, gen, key)
		if err != nil {
			s.logger.Warn("faq cache lookup failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable && len(records) > 0 {
		if err := s.cache.SaveRecords(ctx, gen, key, records, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("faq cache save failed", "key", key, "error", err)
		}
	}
	return records, nil
}

func (s *service) cacheGeneration(ctx context.Context) (int64, bool) {
	if !s.cachingEnabled() {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("faq cache generation lookup failed", "error", err)
		return 0, false
	}
	return gen, true
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("faq cache invalidation failed", "error", err)
	}
}
