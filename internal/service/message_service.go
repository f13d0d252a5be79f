package service

import (
	"context"

	"github.com/parsa-dv/messenger/internal/model"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/pkg/timeutil"
	"github.com/parsa-dv/messenger/internal/presence"
	"github.com/parsa-dv/messenger/internal/repo"
)

type MessageService struct {
	messages *repo.MessageRepo
	users    *repo.UserRepo
	tracker  *presence.Tracker
}

func NewMessageService(messages *repo.MessageRepo, users *repo.UserRepo, tracker *presence.Tracker) *MessageService {
	return &MessageService{messages: messages, users: users, tracker: tracker}
}

// Append stores a message and echoes it back with sender/receiver display
// metadata resolved. Text and attachment cannot both be absent.
func (s *MessageService) Append(ctx context.Context, senderID, receiverID int64, text, filePath, fileType string) (*model.Message, error) {
	if text == "" && filePath == "" {
		return nil, appErr.Validation("Recipient and message required")
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		FilePath:   filePath,
		FileType:   fileType,
		IsRead:     0,
		Timestamp:  timeutil.NowUnix(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	msg.SenderUsername = sender.Username
	msg.SenderPicture = sender.ProfilePicture
	msg.ReceiverUsername = receiver.Username
	msg.ReceiverPicture = receiver.ProfilePicture
	return msg, nil
}

// Conversation returns the full ordered message history between the viewer
// and the peer, plus whether the peer is typing to the viewer right now.
// Clients poll this; there is no cursor.
func (s *MessageService) Conversation(ctx context.Context, viewerID, peerID int64) ([]*model.Message, bool, error) {
	messages, err := s.messages.ListConversation(ctx, viewerID, peerID)
	if err != nil {
		return nil, false, err
	}
	return messages, s.tracker.IsTyping(peerID, viewerID), nil
}

// MarkRead acknowledges everything the counterparty sent to owner. Only the
// receiver's own action flips the flag, and re-running is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, owner, counterparty int64) error {
	_, err := s.messages.MarkRead(ctx, owner, counterparty)
	return err
}

func (s *MessageService) UnreadCount(ctx context.Context, owner, counterparty int64) (int64, error) {
	return s.messages.UnreadCount(ctx, owner, counterparty)
}
