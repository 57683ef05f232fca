package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/store"
)

const kindArticle = "article"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL slug from a title: lower-cased, non-alphanumeric
// runs collapsed into single hyphens. "Hello World!" becomes "hello-world".
func Slugify(title string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

type ArticleRepository struct {
	store store.Store
}

func NewArticleRepository(st store.Store) *ArticleRepository {
	return &ArticleRepository{store: st}
}

// Create assigns id, slug and timestamps when absent. The slug is computed
// once here and never recomputed on later title edits.
func (r *ArticleRepository) Create(ctx context.Context, a *models.Article) error {
	if err := validateArticle(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.TagList == nil {
		a.TagList = []string{}
	}
	if err := r.store.Upsert(ctx, a.ID, articleToDoc(a)); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// Update persists content edits through SetFields. Slug is frozen and
// favorites_count is owned by the relationship service, so neither is ever
// written back here; a favorite landing mid-edit keeps its count.
func (r *ArticleRepository) Update(ctx context.Context, a *models.Article) error {
	if err := validateArticle(a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	fields := store.Document{
		"title":       a.Title,
		"description": a.Description,
		"body":        a.Body,
		"updated_at":  a.UpdatedAt,
	}
	if err := r.store.SetFields(ctx, a.ID, fields); err != nil {
		return notFoundOr(err, "update article")
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, id); err != nil {
		return notFoundOr(err, "delete article")
	}
	return nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	doc, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "find article by id")
	}
	return articleFromDoc(doc)
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	doc, err := r.store.FindOne(ctx, store.Filter{"type": kindArticle, "slug": slug})
	if err != nil {
		return nil, notFoundOr(err, "find article by slug")
	}
	return articleFromDoc(doc)
}

// All returns every article, newest first.
func (r *ArticleRepository) All(ctx context.Context) ([]*models.Article, error) {
	return r.find(ctx, store.Query{
		Filter:    store.Filter{"type": kindArticle},
		SortField: "created_at",
		SortDesc:  true,
	})
}

func (r *ArticleRepository) FindByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	return r.find(ctx, store.Query{
		Filter:    store.Filter{"type": kindArticle, "author_id": authorID},
		SortField: "created_at",
		SortDesc:  true,
	})
}

// FindByAuthors backs the feed: articles by any of the given authors,
// newest first. An empty author set yields no articles, it never falls
// back to the whole collection.
func (r *ArticleRepository) FindByAuthors(ctx context.Context, authorIDs []string) ([]*models.Article, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, store.Query{
		Filter:    store.Filter{"type": kindArticle, "author_id": authorIDs},
		SortField: "created_at",
		SortDesc:  true,
	})
}

// FindByIDs resolves favorites lists. Ids with no surviving document are
// silently skipped: dangling references are tolerated, not crashed on.
func (r *ArticleRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, store.Query{
		Filter:    store.Filter{"type": kindArticle, "_id": ids},
		SortField: "created_at",
		SortDesc:  true,
	})
}

func (r *ArticleRepository) find(ctx context.Context, q store.Query) ([]*models.Article, error) {
	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	out := make([]*models.Article, 0, len(docs))
	for _, doc := range docs {
		a, err := articleFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func validateArticle(a *models.Article) error {
	var msgs []string
	if a.Title == "" {
		msgs = append(msgs, "title can't be blank")
	}
	if a.Body == "" {
		msgs = append(msgs, "body can't be blank")
	}
	if a.AuthorID == "" {
		msgs = append(msgs, "author can't be blank")
	}
	if len(msgs) > 0 {
		return apperr.Validation(msgs...)
	}
	return nil
}

func articleToDoc(a *models.Article) store.Document {
	return store.Document{
		"_id":             a.ID,
		"type":            kindArticle,
		"slug":            a.Slug,
		"title":           a.Title,
		"description":     a.Description,
		"body":            a.Body,
		"tag_list":        a.TagList,
		"author_id":       a.AuthorID,
		"favorites_count": a.FavoritesCount,
		"created_at":      a.CreatedAt,
		"updated_at":      a.UpdatedAt,
	}
}

func articleFromDoc(doc store.Document) (*models.Article, error) {
	if doc["type"] != kindArticle {
		return nil, fmt.Errorf("document is not an article: type=%v", doc["type"])
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	var a models.Article
	if err := bson.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	if a.ID == "" || a.Slug == "" {
		return nil, errors.New("decode article: missing id or slug")
	}
	return &a, nil
}
