package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-app/article-service/internal/apperr"
	"github.com/conduit-app/article-service/internal/events"
	"github.com/conduit-app/article-service/internal/models"
	"github.com/conduit-app/article-service/internal/store"
)

// RelationshipService owns the embedded `following` and `favorites` sets
// and the article favorites counter. Every mutation goes through the
// store's atomic field operations, never a whole-document rewrite, so two
// concurrent calls can only race on a single field and never lose each
// other's writes. All operations are idempotent: calling one twice leaves
// the same state as calling it once.
type RelationshipService struct {
	store  store.Store
	events *events.Publisher
	log    *zap.SugaredLogger
}

func NewRelationshipService(st store.Store, pub *events.Publisher, log *zap.SugaredLogger) *RelationshipService {
	return &RelationshipService{store: st, events: pub, log: log}
}

// Follow adds followee to the follower's following set. Re-following is a
// successful no-op. Following yourself is a validation failure, keeping
// the "never contains the user's own id" invariant.
func (s *RelationshipService) Follow(ctx context.Context, follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return apperr.Validation("you can't follow yourself")
	}
	added, err := s.store.AddToSet(ctx, follower.ID, "following", followee.ID)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if added {
		if err := s.events.UserFollowed(ctx, events.UserFollowed{
			FollowerID: follower.ID,
			FolloweeID: followee.ID,
		}); err != nil {
			s.log.Warnw("publish user.followed failed", "error", err)
		}
	}
	return nil
}

// Unfollow removes followee from the follower's following set. Unfollowing
// someone never followed is a successful no-op.
func (s *RelationshipService) Unfollow(ctx context.Context, follower, followee *models.User) error {
	if _, err := s.store.PullValue(ctx, follower.ID, "following", followee.ID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

// IsFollowing reads fresh membership from the store. An absent user or an
// absent field both read as false.
func (s *RelationshipService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	doc, err := s.store.Get(ctx, followerID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	for _, id := range store.Strings(doc, "following") {
		if id == followeeID {
			return true, nil
		}
	}
	return false, nil
}

// Favorite adds the article to the user's favorites set and bumps the
// article's denormalized counter, but only when the set actually changed:
// re-favoriting moves neither. The two writes hit different documents and
// are not atomic together; readers tolerate the transient skew.
func (s *RelationshipService) Favorite(ctx context.Context, user *models.User, article *models.Article) error {
	added, err := s.store.AddToSet(ctx, user.ID, "favorites", article.ID)
	if err != nil {
		return fmt.Errorf("favorite: %w", err)
	}
	if !added {
		return nil
	}
	if err := s.store.IncField(ctx, article.ID, "favorites_count", 1); err != nil {
		return fmt.Errorf("favorite: increment count: %w", err)
	}
	if err := s.events.ArticleFavorited(ctx, events.ArticleFavorited{
		UserID:    user.ID,
		ArticleID: article.ID,
		Favorited: true,
	}); err != nil {
		s.log.Warnw("publish article.favorited failed", "error", err)
	}
	return nil
}

// Unfavorite is the inverse: the counter moves only when the set shrank,
// so unfavoriting something never favorited is a counter-neutral no-op.
func (s *RelationshipService) Unfavorite(ctx context.Context, user *models.User, article *models.Article) error {
	removed, err := s.store.PullValue(ctx, user.ID, "favorites", article.ID)
	if err != nil {
		return fmt.Errorf("unfavorite: %w", err)
	}
	if !removed {
		return nil
	}
	if err := s.store.IncField(ctx, article.ID, "favorites_count", -1); err != nil {
		return fmt.Errorf("unfavorite: decrement count: %w", err)
	}
	if err := s.events.ArticleFavorited(ctx, events.ArticleFavorited{
		UserID:    user.ID,
		ArticleID: article.ID,
		Favorited: false,
	}); err != nil {
		s.log.Warnw("publish article.favorited failed", "error", err)
	}
	return nil
}

// IsFavorited reads fresh membership from the store.
func (s *RelationshipService) IsFavorited(ctx context.Context, userID, articleID string) (bool, error) {
	doc, err := s.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is favorited: %w", err)
	}
	for _, id := range store.Strings(doc, "favorites") {
		if id == articleID {
			return true, nil
		}
	}
	return false, nil
}
