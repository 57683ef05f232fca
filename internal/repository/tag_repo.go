package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/store"
)

const kindTag = "tag"

// TagRepository keeps tags as a first-class collection; article tag lists
// are a derived view of it.
type TagRepository struct {
	store store.Store
}

func NewTagRepository(st store.Store) *TagRepository {
	return &TagRepository{store: st}
}

func (r *TagRepository) Create(ctx context.Context, t *models.Tag) error {
	if t.Name == "" {
		return apperr.Validation("name can't be blank")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.store.Upsert(ctx, t.ID, tagToDoc(t)); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// UpsertByName creates the tag unless one with that name already exists.
func (r *TagRepository) UpsertByName(ctx context.Context, name string) error {
	if name == "" {
		return apperr.Validation("name can't be blank")
	}
	_, err := r.FindByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return r.Create(ctx, &models.Tag{Name: name})
}

func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	doc, err := r.store.FindOne(ctx, store.Filter{"type": kindTag, "name": name})
	if err != nil {
		return nil, notFoundOr(err, "find tag by name")
	}
	return tagFromDoc(doc)
}

func (r *TagRepository) All(ctx context.Context) ([]*models.Tag, error) {
	docs, err := r.store.Find(ctx, store.Query{Filter: store.Filter{"type": kindTag}})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make([]*models.Tag, 0, len(docs))
	for _, doc := range docs {
		t, err := tagFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func tagToDoc(t *models.Tag) store.Document {
	return store.Document{
		"_id":  t.ID,
		"type": kindTag,
		"name": t.Name,
	}
}

func tagFromDoc(doc store.Document) (*models.Tag, error) {
	if doc["type"] != kindTag {
		return nil, fmt.Errorf("document is not a tag: type=%v", doc["type"])
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	var t models.Tag
	if err := bson.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	if t.Name == "" {
		return nil, errors.New("decode tag: missing name")
	}
	return &t, nil
}
