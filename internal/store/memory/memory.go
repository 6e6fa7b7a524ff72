// Package memory keeps messages and watermarks in process memory. It backs
// the service when no database is configured.
package memory

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"context"
	"github.com/google/uuid"
	"sort"
	"sync"
	"time"
)

type Store struct {
	mu         sync.RWMutex
	messages   []models.Message
	watermarks map[models.UserID]models.Watermarks
	now        func() time.Time
}

func New() *Store {
	return &Store{
		watermarks: make(map[models.UserID]models.Watermarks),
		now:        time.Now,
	}
}

func (s *Store) FindConversation(_ context.Context, a, b models.UserID, item models.ItemID) (models.ConversationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ItemID != item {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			return m.ConversationID, nil
		}
	}
	return "", store.ErrNotFound
}

func (s *Store) ListMessages(_ context.Context, userID models.UserID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	// newest first, like the conversation list query
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListConversationMessages(_ context.Context, conv models.ConversationID, userID models.UserID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID != conv {
			continue
		}
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SaveMessage(_ context.Context, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.CreatedAt = s.now().UTC()
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *Store) Read(_ context.Context, userID models.UserID) (models.Watermarks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.Watermarks, len(s.watermarks[userID]))
	for k, v := range s.watermarks[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *Store) Write(_ context.Context, userID models.UserID, wm models.Watermarks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(models.Watermarks, len(wm))
	for k, v := range wm {
		cp[k] = v
	}
	s.watermarks[userID] = cp
	return nil
}
