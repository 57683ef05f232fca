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

const kindUser = "user"

// UserRepository maps user entities onto documents of kind "user". The
// store adapter is an explicit dependency; there is no ambient handle.
type UserRepository struct {
	store store.Store
}

func NewUserRepository(st store.Store) *UserRepository {
	return &UserRepository{store: st}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	if err := r.store.Upsert(ctx, u.ID, userToDoc(u)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists profile edits through SetFields, never a whole-document
// rewrite: the embedded following/favorites sets belong to the relationship
// service and a concurrent follow or favorite must survive this write.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	fields := store.Document{
		"username":        u.Username,
		"email":           u.Email,
		"password_digest": u.PasswordDigest,
		"bio":             u.Bio,
		"image":           u.Image,
		"updated_at":      u.UpdatedAt,
	}
	if err := r.store.SetFields(ctx, u.ID, fields); err != nil {
		return notFoundOr(err, "update user")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "find user by id")
	}
	return userFromDoc(doc)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	doc, err := r.store.FindOne(ctx, store.Filter{"type": kindUser, "username": username})
	if err != nil {
		return nil, notFoundOr(err, "find user by username")
	}
	return userFromDoc(doc)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := r.store.FindOne(ctx, store.Filter{"type": kindUser, "email": email})
	if err != nil {
		return nil, notFoundOr(err, "find user by email")
	}
	return userFromDoc(doc)
}

func validateUser(u *models.User) error {
	var msgs []string
	if u.Username == "" {
		msgs = append(msgs, "username can't be blank")
	}
	if u.Email == "" {
		msgs = append(msgs, "email can't be blank")
	}
	if u.PasswordDigest == "" {
		msgs = append(msgs, "password can't be blank")
	}
	if len(msgs) > 0 {
		return apperr.Validation(msgs...)
	}
	return nil
}

func userToDoc(u *models.User) store.Document {
	return store.Document{
		"_id":             u.ID,
		"type":            kindUser,
		"username":        u.Username,
		"email":           u.Email,
		"password_digest": u.PasswordDigest,
		"bio":             u.Bio,
		"image":           u.Image,
		"following":       u.Following,
		"favorites":       u.Favorites,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
}

// userFromDoc is the single typed conversion for user documents. A wrong
// or missing kind discriminator is a malformed document, not a user.
func userFromDoc(doc store.Document) (*models.User, error) {
	if doc["type"] != kindUser {
		return nil, fmt.Errorf("document is not a user: type=%v", doc["type"])
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	var u models.User
	if err := bson.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" || u.Username == "" {
		return nil, errors.New("decode user: missing id or username")
	}
	return &u, nil
}

// notFoundOr maps the store's absence sentinel to the application's and
// wraps anything else with the failing operation.
func notFoundOr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
