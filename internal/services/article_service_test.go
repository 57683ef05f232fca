package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-app/article-service/internal/apperr"
)

func TestCreateArticleDerivesSlug(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	a := env.publish(t, alice, "Hello, World! 100%")
	assert.Equal(t, "hello-world-100", a.Slug)
	assert.Equal(t, alice.ID, a.AuthorID)
	assert.Equal(t, int64(0), a.FavoritesCount)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCreateArticleRejectsSlugClash(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.publish(t, alice, "Hello World")

	// different title, same slug after normalization
	_, err := env.articles.Create(context.Background(), alice, CreateArticleInput{
		Title: "Hello, World!",
		Body:  "different body",
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "title has already been taken")
}

func TestCreateArticleValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	_, err := env.articles.Create(context.Background(), alice, CreateArticleInput{Title: "No Body"})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "body can't be blank")
}

func TestUpdateKeepsSlugWhenTitleChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	a := env.publish(t, alice, "Original Title")

	newTitle := "Completely Different Title"
	updated, err := env.articles.Update(ctx, alice, a.Slug, UpdateArticleInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, "original-title", updated.Slug)

	// still reachable under the original slug
	again, err := env.articles.GetBySlug(ctx, "original-title")
	require.NoError(t, err)
	assert.Equal(t, newTitle, again.Title)
}

func TestUpdateRequiresAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	a := env.publish(t, alice, "Alice Writes")

	body := "bob was here"
	_, err := env.articles.Update(ctx, bob, a.Slug, UpdateArticleInput{Body: &body})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	err = env.articles.Delete(ctx, bob, a.Slug)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestDeleteArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	a := env.publish(t, alice, "Ephemeral")

	require.NoError(t, env.articles.Delete(ctx, alice, a.Slug))

	_, err := env.articles.GetBySlug(ctx, a.Slug)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListFiltersCompose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	golang := env.publish(t, alice, "Go Concurrency", "golang")
	env.publish(t, alice, "Cooking At Home", "food")
	env.publish(t, bob, "Go For Beginners", "golang")

	byTag, err := env.articles.List(ctx, ListFilter{Tag: "golang"})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	byAuthor, err := env.articles.List(ctx, ListFilter{Author: "alice"})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	both, err := env.articles.List(ctx, ListFilter{Tag: "golang", Author: "alice"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, golang.ID, both[0].ID)
}

func TestListFavoritedFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	liked := env.publish(t, alice, "The Liked One")
	env.publish(t, alice, "The Ignored One")

	require.NoError(t, env.rel.Favorite(ctx, bob, liked))

	out, err := env.articles.List(ctx, ListFilter{FavoritedBy: "bob"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, liked.ID, out[0].ID)

	none, err := env.articles.List(ctx, ListFilter{FavoritedBy: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListUnknownAuthorIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.publish(t, alice, "Something")

	out, err := env.articles.List(context.Background(), ListFilter{Author: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.publish(t, alice, "Post One")
	env.publish(t, alice, "Post Two")
	env.publish(t, alice, "Post Three")

	page, err := env.articles.List(ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := env.articles.List(ctx, ListFilter{Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	past, err := env.articles.List(ctx, ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestFeedOnlyFollowedAuthors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	fromAlice := env.publish(t, alice, "From Alice")
	env.publish(t, bob, "From Bob")

	require.NoError(t, env.rel.Follow(ctx, carol, alice))

	feed, err := env.articles.Feed(ctx, env.reload(t, carol))
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, fromAlice.ID, feed[0].ID)
}

func TestFeedEmptyWhenFollowingNobody(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.publish(t, alice, "Unseen")
	bob := env.register(t, "bob")

	feed, err := env.articles.Feed(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFavoritedArticlesSkipsDanglingIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	keep := env.publish(t, alice, "Keeper")
	gone := env.publish(t, alice, "Goner")

	require.NoError(t, env.rel.Favorite(ctx, bob, keep))
	require.NoError(t, env.rel.Favorite(ctx, bob, gone))
	require.NoError(t, env.articles.Delete(ctx, alice, gone.Slug))

	out, err := env.articles.FavoritedArticles(ctx, env.reload(t, bob))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, keep.ID, out[0].ID)
}
