// Package events publishes domain events to Kafka. Publishing is fire and
// forget from the caller's point of view: a nil Publisher is valid and
// drops everything, and services log publish failures instead of failing
// the request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type ArticleCreated struct {
	ArticleID string    `json:"article_id"`
	Slug      string    `json:"slug"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UserFollowed struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type ArticleFavorited struct {
	UserID    string `json:"user_id"`
	ArticleID string `json:"article_id"`
	Favorited bool   `json:"favorited"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) ArticleCreated(ctx context.Context, ev ArticleCreated) error {
	return p.publish(ctx, "article.created", ev.ArticleID, ev)
}

func (p *Publisher) UserFollowed(ctx context.Context, ev UserFollowed) error {
	return p.publish(ctx, "user.followed", ev.FollowerID, ev)
}

func (p *Publisher) ArticleFavorited(ctx context.Context, ev ArticleFavorited) error {
	return p.publish(ctx, "article.favorited", ev.ArticleID, ev)
}

func (p *Publisher) publish(ctx context.Context, kind, key string, ev interface{}) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(kind)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
