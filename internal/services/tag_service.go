package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/cache"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/repository"
)

type TagService struct {
	tags  *repository.TagRepository
	cache *cache.Client
	log   *zap.SugaredLogger
}

func NewTagService(tags *repository.TagRepository, cacheCli *cache.Client, log *zap.SugaredLogger) *TagService {
	return &TagService{tags: tags, cache: cacheCli, log: log}
}

// Create adds a tag unless one with the same name exists already.
func (s *TagService) Create(ctx context.Context, name string) (*models.Tag, error) {
	existing, err := s.tags.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	t := &models.Tag{Name: name}
	if err := s.tags.Create(ctx, t); err != nil {
		return nil, err
	}
	s.cache.InvalidateTags(ctx)
	return t, nil
}

// List returns every tag name, serving from the cache when warm.
func (s *TagService) List(ctx context.Context) ([]string, error) {
	if names, ok := s.cache.GetTags(ctx); ok {
		return names, nil
	}
	tags, err := s.tags.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	s.cache.SetTags(ctx, names)
	return names, nil
}
