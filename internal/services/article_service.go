package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/cache"
	"github.com/conduit-app/article-service/internal/events"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/repository"
	"github.com/conduit-app/article-service/internal/validate"
)

type CreateArticleInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Body        string   `json:"body" validate:"required"`
	TagList     []string `json:"tagList"`
}

type UpdateArticleInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Body        *string `json:"body"`
}

// ListFilter composes with AND semantics; zero values mean "no filter".
type ListFilter struct {
	Tag         string
	Author      string
	FavoritedBy string
	Limit       int
	Offset      int
}

type ArticleService struct {
	articles *repository.ArticleRepository
	users    *repository.UserRepository
	tags     *repository.TagRepository
	cache    *cache.Client
	events   *events.Publisher
	log      *zap.SugaredLogger
}

func NewArticleService(
	articles *repository.ArticleRepository,
	users *repository.UserRepository,
	tags *repository.TagRepository,
	cacheCli *cache.Client,
	pub *events.Publisher,
	log *zap.SugaredLogger,
) *ArticleService {
	return &ArticleService{
		articles: articles,
		users:    users,
		tags:     tags,
		cache:    cacheCli,
		events:   pub,
		log:      log,
	}
}

// Create publishes an article under the author's id. The slug is derived
// from the title here and frozen; a title that collapses onto an existing
// slug is rejected up front.
func (s *ArticleService) Create(ctx context.Context, author *models.User, in CreateArticleInput) (*models.Article, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	slug := repository.Slugify(in.Title)
	if slug == "" {
		return nil, apperr.Validation("title can't be blank")
	}
	if _, err := s.articles.FindBySlug(ctx, slug); err == nil {
		return nil, apperr.Validation("title has already been taken")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	a := &models.Article{
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		TagList:     in.TagList,
		AuthorID:    author.ID,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	for _, tag := range a.TagList {
		if err := s.tags.UpsertByName(ctx, tag); err != nil {
			s.log.Warnw("tag upsert failed", "tag", tag, "error", err)
		}
	}
	s.cache.InvalidateTags(ctx)
	if err := s.events.ArticleCreated(ctx, events.ArticleCreated{
		ArticleID: a.ID,
		Slug:      a.Slug,
		AuthorID:  a.AuthorID,
		CreatedAt: a.CreatedAt,
	}); err != nil {
		s.log.Warnw("publish article.created failed", "error", err)
	}
	s.log.Infow("article created", "article_id", a.ID, "slug", a.Slug)
	return a, nil
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.articles.FindBySlug(ctx, slug)
}

// Update edits title, description or body. Only the author may update, and
// the slug never changes even when the title does.
func (s *ArticleService) Update(ctx context.Context, caller *models.User, slug string, in UpdateArticleInput) (*models.Article, error) {
	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != caller.ID {
		return nil, apperr.ErrUnauthorized
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validation("title can't be blank")
		}
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, apperr.Validation("body can't be blank")
		}
		a.Body = *in.Body
	}
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ArticleService) Delete(ctx context.Context, caller *models.User, slug string) error {
	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if a.AuthorID != caller.ID {
		return apperr.ErrUnauthorized
	}
	if err := s.articles.Delete(ctx, a.ID); err != nil {
		return err
	}
	s.log.Infow("article deleted", "article_id", a.ID, "slug", a.Slug)
	return nil
}

// List applies the tag/author/favoritedBy filters with AND semantics, then
// offset and limit. An unknown author or favoriting user filters down to
// nothing rather than erroring.
func (s *ArticleService) List(ctx context.Context, f ListFilter) ([]*models.Article, error) {
	var authorID string
	if f.Author != "" {
		author, err := s.users.FindByUsername(ctx, f.Author)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		authorID = author.ID
	}

	var favoritedIDs map[string]bool
	if f.FavoritedBy != "" {
		u, err := s.users.FindByUsername(ctx, f.FavoritedBy)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		favoritedIDs = make(map[string]bool, len(u.Favorites))
		for _, id := range u.Favorites {
			favoritedIDs[id] = true
		}
	}

	var all []*models.Article
	var err error
	if authorID != "" {
		all, err = s.articles.FindByAuthor(ctx, authorID)
	} else {
		all, err = s.articles.All(ctx)
	}
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Article, 0, len(all))
	for _, a := range all {
		if f.Tag != "" && !a.HasTag(f.Tag) {
			continue
		}
		if favoritedIDs != nil && !favoritedIDs[a.ID] {
			continue
		}
		filtered = append(filtered, a)
	}

	if f.Offset > 0 {
		if f.Offset >= len(filtered) {
			return nil, nil
		}
		filtered = filtered[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(filtered) {
		filtered = filtered[:f.Limit]
	}
	return filtered, nil
}

// Feed returns articles authored by anyone the user follows, newest first.
// An empty following set yields an empty feed, never the whole collection.
func (s *ArticleService) Feed(ctx context.Context, user *models.User) ([]*models.Article, error) {
	if len(user.Following) == 0 {
		return nil, nil
	}
	return s.articles.FindByAuthors(ctx, user.Following)
}

// FavoritedArticles resolves the user's favorites set. Favorite ids whose
// article has since been deleted are omitted.
func (s *ArticleService) FavoritedArticles(ctx context.Context, user *models.User) ([]*models.Article, error) {
	return s.articles.FindByIDs(ctx, user.Favorites)
}

// Author resolves an article's author. Returns NotFound when the author
// document dangles.
func (s *ArticleService) Author(ctx context.Context, a *models.Article) (*models.User, error) {
	return s.users.FindByID(ctx, a.AuthorID)
}
