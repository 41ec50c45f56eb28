package models

import "time"

// Notification kinds emitted by engagement actions.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	Bio          string    `json:"bio,omitempty"`
	Link         string    `json:"link,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CoverImage   string    `json:"cover_image,omitempty"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	LikedPosts   []string  `json:"liked_posts"`
	Created      time.Time `json:"created"`
}

// UserSummary is the public projection of a user attached to
// notifications and profile listings.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
	}
}

type Post struct {
	ID       string    `json:"id"`
	AuthorID string    `json:"author_id"`
	Body     string    `json:"body"`
	Images   []string  `json:"images,omitempty"`
	Likes    []string  `json:"likes"`
	Created  time.Time `json:"created"`
}

// Comment is an entry in a post's append-ordered comment sequence.
type Comment struct {
	ID       string    `json:"id"`
	PostID   string    `json:"post_id"`
	AuthorID string    `json:"author_id"`
	Body     string    `json:"body"`
	Created  time.Time `json:"created"`
}

type Notification struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Kind    string    `json:"kind"`
	Read    bool      `json:"read"`
	Created time.Time `json:"created"`

	// FromUser is resolved at listing time, never stored.
	FromUser *UserSummary `json:"from_user,omitempty"`
}
