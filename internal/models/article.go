package models

import "time"

// Article references its author by id; the slug is derived from the title
// at creation and frozen for the life of the document. FavoritesCount is a
// denormalized counter kept in step by the relationship service.
type Article struct {
	ID             string    `bson:"_id,omitempty" json:"-"`
	Slug           string    `bson:"slug" json:"slug"`
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description,omitempty" json:"description"`
	Body           string    `bson:"body" json:"body"`
	TagList        []string  `bson:"tag_list" json:"tagList"`
	AuthorID       string    `bson:"author_id" json:"-"`
	FavoritesCount int64     `bson:"favorites_count" json:"favoritesCount"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

func (a *Article) HasTag(tag string) bool {
	for _, t := range a.TagList {
		if t == tag {
			return true
		}
	}
	return false
}
