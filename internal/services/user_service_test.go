package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-app/article-service/internal/apperr"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Register(ctx, RegisterInput{Email: "a@example.com", Password: "pw"})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "username can't be blank")

	_, err = env.users.Register(ctx, RegisterInput{Username: "alice", Email: "not-an-email", Password: "pw"})
	verr, ok = apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "email must be a valid email address")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw123456",
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "username has already been taken")

	_, err = env.users.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "pw123456",
	})
	verr, ok = apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "email has already been taken")
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "alice")

	assert.NotEmpty(t, u.PasswordDigest)
	assert.NotEqual(t, "secret123", u.PasswordDigest)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	u, err := env.users.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, err = env.users.Login(ctx, "alice@example.com", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))

	_, err = env.users.Login(ctx, "nobody@example.com", "secret123")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestUpdateAppliesOnlySentFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	bio := "I write things"
	updated, err := env.users.Update(ctx, alice.ID, UpdateUserInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, alice.PasswordDigest, updated.PasswordDigest)

	// old password still works after an update that omitted it
	_, err = env.users.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
}

func TestUpdatePasswordRehashes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	newPw := "brand-new-pw"
	_, err := env.users.Update(ctx, alice.ID, UpdateUserInput{Password: &newPw})
	require.NoError(t, err)

	_, err = env.users.Login(ctx, "alice@example.com", newPw)
	require.NoError(t, err)
	_, err = env.users.Login(ctx, "alice@example.com", "secret123")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestUpdateUsernameUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")

	taken := "bob"
	_, err := env.users.Update(ctx, alice.ID, UpdateUserInput{Username: &taken})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Messages, "username has already been taken")

	// keeping your own username is not a clash
	same := "alice"
	_, err = env.users.Update(ctx, alice.ID, UpdateUserInput{Username: &same})
	require.NoError(t, err)
}

func TestGetByUnknownID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.GetByID(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
