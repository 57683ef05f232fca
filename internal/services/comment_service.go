package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/repository"
)

type CommentService struct {
	comments *repository.CommentRepository
	users    *repository.UserRepository
	log      *zap.SugaredLogger
}

func NewCommentService(comments *repository.CommentRepository, users *repository.UserRepository, log *zap.SugaredLogger) *CommentService {
	return &CommentService{comments: comments, users: users, log: log}
}

func (s *CommentService) Add(ctx context.Context, author *models.User, article *models.Article, body string) (*models.Comment, error) {
	c := &models.Comment{
		Body:      body,
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) List(ctx context.Context, article *models.Article) ([]*models.Comment, error) {
	return s.comments.FindByArticle(ctx, article.ID)
}

// Delete removes a comment from an article. Only the comment's author may
// delete it; a comment id that doesn't belong to the article is NotFound.
func (s *CommentService) Delete(ctx context.Context, caller *models.User, article *models.Article, commentID string) error {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.ArticleID != article.ID {
		return apperr.ErrNotFound
	}
	if c.AuthorID != caller.ID {
		return apperr.ErrUnauthorized
	}
	return s.comments.Delete(ctx, c.ID)
}

// Author resolves a comment's author for projection.
func (s *CommentService) Author(ctx context.Context, c *models.Comment) (*models.User, error) {
	return s.users.FindByID(ctx, c.AuthorID)
}
