package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/store"
)

const kindComment = "comment"

type CommentRepository struct {
	store store.Store
}

func NewCommentRepository(st store.Store) *CommentRepository {
	return &CommentRepository{store: st}
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	var msgs []string
	if c.Body == "" {
		msgs = append(msgs, "body can't be blank")
	}
	if c.AuthorID == "" {
		msgs = append(msgs, "author can't be blank")
	}
	if c.ArticleID == "" {
		msgs = append(msgs, "article can't be blank")
	}
	if len(msgs) > 0 {
		return apperr.Validation(msgs...)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := r.store.Upsert(ctx, c.ID, commentToDoc(c)); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, id); err != nil {
		return notFoundOr(err, "delete comment")
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	doc, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "find comment by id")
	}
	return commentFromDoc(doc)
}

// FindByArticle lists an article's comments oldest first.
func (r *CommentRepository) FindByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	docs, err := r.store.Find(ctx, store.Query{
		Filter:    store.Filter{"type": kindComment, "article_id": articleID},
		SortField: "created_at",
	})
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	out := make([]*models.Comment, 0, len(docs))
	for _, doc := range docs {
		c, err := commentFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func commentToDoc(c *models.Comment) store.Document {
	return store.Document{
		"_id":        c.ID,
		"type":       kindComment,
		"body":       c.Body,
		"author_id":  c.AuthorID,
		"article_id": c.ArticleID,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

func commentFromDoc(doc store.Document) (*models.Comment, error) {
	if doc["type"] != kindComment {
		return nil, fmt.Errorf("document is not a comment: type=%v", doc["type"])
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode comment: %w", err)
	}
	var c models.Comment
	if err := bson.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode comment: %w", err)
	}
	if c.ID == "" {
		return nil, errors.New("decode comment: missing id")
	}
	return &c, nil
}
