package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/parsa-dv/messenger/internal/model"
)

type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Insert stores a new message and fills in its assigned id. Inserts run on a
// single serialized connection, so ids are strictly increasing in insert
// order even when timestamps collide.
func (r *MessageRepo) Insert(ctx context.Context, msg *model.Message) error {
	data := map[string]interface{}{
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
		"message":     msg.Text,
		"file_path":   msg.FilePath,
		"file_type":   msg.FileType,
		"is_read":     msg.IsRead,
		"timestamp":   msg.Timestamp,
	}
	sqlStr, args, err := builder.BuildInsert("messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	msg.ID, err = result.LastInsertId()
	return err
}

// ListConversation returns every message between the unordered pair {a, b}
// ascending by (timestamp, id), joined with sender/receiver display metadata.
func (r *MessageRepo) ListConversation(ctx context.Context, a, b int64) ([]*model.Message, error) {
	const q = `SELECT m.id, m.sender_id, m.receiver_id, m.message, m.file_path, m.file_type, m.is_read, m.timestamp,
       sender.username AS sender_username,
       sender.profile_picture AS sender_picture,
       receiver.username AS receiver_username,
       receiver.profile_picture AS receiver_picture
FROM messages m
JOIN users sender ON m.sender_id = sender.id
JOIN users receiver ON m.receiver_id = receiver.id
WHERE (m.sender_id = ? AND m.receiver_id = ?)
   OR (m.sender_id = ? AND m.receiver_id = ?)
ORDER BY m.timestamp ASC, m.id ASC`
	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, q, a, b, b, a); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips is_read for every unread message sent by counterparty to
// owner. The flag only ever moves 0 -> 1; re-running is a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, owner, counterparty int64) (int64, error) {
	where := map[string]interface{}{
		"sender_id":   counterparty,
		"receiver_id": owner,
		"is_read":     0,
	}
	sqlStr, args, err := builder.BuildUpdate("messages", where, map[string]interface{}{"is_read": 1})
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MessageRepo) UnreadCount(ctx context.Context, owner, counterparty int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM messages WHERE sender_id = ? AND receiver_id = ? AND is_read = 0`
	var count int64
	if err := r.db.GetContext(ctx, &count, q, counterparty, owner); err != nil {
		return 0, err
	}
	return count, nil
}

// UnreadCountsByPeer returns owner's unread counts grouped by sender in one
// query; the contact aggregator consumes this on every poll.
func (r *MessageRepo) UnreadCountsByPeer(ctx context.Context, owner int64) (map[int64]int64, error) {
	const q = `SELECT sender_id, COUNT(*) AS cnt FROM messages WHERE receiver_id = ? AND is_read = 0 GROUP BY sender_id`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	counts := make(map[int64]int64)
	for rows.Next() {
		var senderID, cnt int64
		if err := rows.Scan(&senderID, &cnt); err != nil {
			return nil, err
		}
		counts[senderID] = cnt
	}
	return counts, rows.Err()
}
