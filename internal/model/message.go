package model

const (
	AttachmentImage = "image"
	AttachmentVideo = "video"
)

// Message is immutable once stored except for the one-way IsRead flip.
// Timestamp has second resolution, so conversation ordering always
// tie-breaks on the auto-increment ID.
type Message struct {
	ID         int64  `db:"id" json:"id"`
	SenderID   int64  `db:"sender_id" json:"sender_id"`
	ReceiverID int64  `db:"receiver_id" json:"receiver_id"`
	Text       string `db:"message" json:"message"`
	FilePath   string `db:"file_path" json:"file_path"`
	FileType   string `db:"file_type" json:"file_type"`
	IsRead     int    `db:"is_read" json:"is_read"`
	Timestamp  int64  `db:"timestamp" json:"timestamp"`

	SenderUsername   string `db:"sender_username" json:"sender_username,omitempty"`
	SenderPicture    string `db:"sender_picture" json:"sender_picture,omitempty"`
	ReceiverUsername string `db:"receiver_username" json:"receiver_username,omitempty"`
	ReceiverPicture  string `db:"receiver_picture" json:"receiver_picture,omitempty"`
}
