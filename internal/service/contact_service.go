package service

import (
	"context"

	"github.com/parsa-dv/messenger/internal/model"
	"github.com/parsa-dv/messenger/internal/presence"
	"github.com/parsa-dv/messenger/internal/repo"
)

// ContactService assembles the per-viewer contact list out of the user
// directory, the message store's unread counts and live typing signals.
// Nothing is cached; every poll recomputes, which is linear in the number of
// other users and fine at the contact-list scale this serves.
type ContactService struct {
	users    *repo.UserRepo
	messages *repo.MessageRepo
	tracker  *presence.Tracker
}

func NewContactService(users *repo.UserRepo, messages *repo.MessageRepo, tracker *presence.Tracker) *ContactService {
	return &ContactService{users: users, messages: messages, tracker: tracker}
}

func (s *ContactService) Contacts(ctx context.Context, viewerID int64) ([]*model.Contact, error) {
	others, err := s.users.ListOthers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.UnreadCountsByPeer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	contacts := make([]*model.Contact, 0, len(others))
	for _, u := range others {
		contacts = append(contacts, &model.Contact{
			ID:             u.ID,
			Username:       u.Username,
			ProfilePicture: u.ProfilePicture,
			Bio:            u.Bio,
			UnreadCount:    unread[u.ID],
			IsTyping:       s.tracker.IsTyping(u.ID, viewerID),
		})
	}
	return contacts, nil
}

func (s *ContactService) Search(ctx context.Context, viewerID int64, query string) ([]*model.Contact, error) {
	users, err := s.users.SearchOthers(ctx, viewerID, query)
	if err != nil {
		return nil, err
	}
	results := make([]*model.Contact, 0, len(users))
	for _, u := range users {
		results = append(results, &model.Contact{
			ID:             u.ID,
			Username:       u.Username,
			ProfilePicture: u.ProfilePicture,
			Bio:            u.Bio,
		})
	}
	return results, nil
}
