package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/repository"
	"github.com/conduit-app/article-service/internal/store"
)

// testEnv wires every service against an in-memory store. Cache and event
// publishing stay nil, exercising the degraded paths the production wiring
// also allows.
type testEnv struct {
	store    *store.Memory
	users    *UserService
	articles *ArticleService
	comments *CommentService
	tags     *TagService
	rel      *RelationshipService

	userRepo    *repository.UserRepository
	articleRepo *repository.ArticleRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemory()
	log := zap.NewNop().Sugar()

	users := repository.NewUserRepository(st)
	articles := repository.NewArticleRepository(st)
	comments := repository.NewCommentRepository(st)
	tags := repository.NewTagRepository(st)

	return &testEnv{
		store:       st,
		users:       NewUserService(users, log),
		articles:    NewArticleService(articles, users, tags, nil, nil, log),
		comments:    NewCommentService(comments, users, log),
		tags:        NewTagService(tags, nil, log),
		rel:         NewRelationshipService(st, nil, log),
		userRepo:    users,
		articleRepo: articles,
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) publish(t *testing.T, author *models.User, title string, tags ...string) *models.Article {
	t.Helper()
	a, err := e.articles.Create(context.Background(), author, CreateArticleInput{
		Title:       title,
		Description: "about " + title,
		Body:        "body of " + title,
		TagList:     tags,
	})
	require.NoError(t, err)
	return a
}

// reload fetches the freshest copy of a user, picking up set mutations.
func (e *testEnv) reload(t *testing.T, u *models.User) *models.User {
	t.Helper()
	fresh, err := e.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return fresh
}
