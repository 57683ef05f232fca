package models

type Tag struct {
	ID   string `bson:"_id,omitempty" json:"-"`
	Name string `bson:"name" json:"name"`
}
