package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/repository"
	"github.com/conduit-app/article-service/internal/validate"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// UpdateUserInput applies only the fields the caller sent. An omitted
// password never touches the stored digest.
type UpdateUserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type UserService struct {
	users *repository.UserRepository
	log   *zap.SugaredLogger
}

func NewUserService(users *repository.UserRepository, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, log: log}
}

// Register creates a user, hashing the password before it ever reaches a
// document. Username and email uniqueness is a point-lookup pre-check; the
// store's unique indexes close the concurrent-registration window.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: string(digest),
		Bio:            in.Bio,
		Image:          in.Image,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Infow("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies the credential and yields the user. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil && *in.Username != u.Username {
		if *in.Username == "" {
			return nil, apperr.Validation("username can't be blank")
		}
		if err := s.ensureUsernameFree(ctx, *in.Username); err != nil {
			return nil, err
		}
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != u.Email {
		if *in.Email == "" {
			return nil, apperr.Validation("email can't be blank")
		}
		if err := s.ensureEmailFree(ctx, *in.Email); err != nil {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		digest, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordDigest = string(digest)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Image != nil {
		u.Image = *in.Image
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return apperr.Validation("username has already been taken")
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return apperr.Validation("email has already been taken")
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
