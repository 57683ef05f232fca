package models

// Profile is the public projection of a user relative to a viewer. It is
// derived per request and never persisted; secrets and the email address
// stay out of it.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// NewProfile builds the projection from already-loaded users. Pure: no
// store access, the viewer's in-memory following set decides the flag.
// A nil viewer yields following=false.
func NewProfile(target *User, viewer *User) Profile {
	p := Profile{
		Username: target.Username,
		Bio:      target.Bio,
		Image:    target.Image,
	}
	if viewer != nil {
		p.Following = viewer.IsFollowing(target.ID)
	}
	return p
}
