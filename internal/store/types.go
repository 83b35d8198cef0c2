package store

import "time"

// User can create designs and leave comments. Avatars default to a generated
// placeholder when none is supplied.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is attached to a design and may mention other users by id.
type Comment struct {
	ID        string    `json:"id"`
	DesignID  string    `json:"designId"`
	AuthorID  string    `json:"author"`
	Text      string    `json:"text"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
