package model

type User struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	Email          string `db:"email" json:"email"`
	PasswordHash   string `db:"password_hash" json:"-"`
	ProfilePicture string `db:"profile_picture" json:"profile_picture"`
	Bio            string `db:"bio" json:"bio"`
	EmailVerified  int    `db:"email_verified" json:"-"`
	Ctime          int64  `db:"ctime" json:"-"`
}

// Contact is one row of the per-viewer contact list: another user's display
// metadata joined with the viewer's unread count and the peer's live typing
// state. Recomputed on every poll.
type Contact struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	ProfilePicture string `db:"profile_picture" json:"profile_picture"`
	Bio            string `db:"bio" json:"bio"`
	UnreadCount    int64  `db:"unread_count" json:"unread_count"`
	IsTyping       bool   `db:"-" json:"is_typing"`
}
