package models

import "time"

type Comment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Body      string    `bson:"body" json:"body"`
	AuthorID  string    `bson:"author_id" json:"-"`
	ArticleID string    `bson:"article_id" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
