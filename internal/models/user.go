package models

import "time"

// User is the owning document for the social graph: the embedded
// `following` and `favorites` arrays are duplicate-free id sets mutated
// only through the relationship service.
type User struct {
	ID             string    `bson:"_id,omitempty" json:"-"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	PasswordDigest string    `bson:"password_digest" json:"-"`
	Bio            string    `bson:"bio,omitempty" json:"bio"`
	Image          string    `bson:"image,omitempty" json:"image"`
	Following      []string  `bson:"following" json:"-"`
	Favorites      []string  `bson:"favorites" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsFollowing reports membership in the loaded following set. Fresh state
// should be read through the relationship service instead.
func (u *User) IsFollowing(userID string) bool {
	for _, id := range u.Following {
		if id == userID {
			return true
		}
	}
	return false
}

// HasFavorited reports membership in the loaded favorites set.
func (u *User) HasFavorited(articleID string) bool {
	for _, id := range u.Favorites {
		if id == articleID {
			return true
		}
	}
	return false
}
