// Package inbox resolves conversations, stores messages and reports what
// the current user has not read yet.
package inbox

import (
	"bitbucket.org/sotavant/quick-swapp/internal/conversation"
	"bitbucket.org/sotavant/quick-swapp/internal/logger"
	"bitbucket.org/sotavant/quick-swapp/internal/metrics"
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/notify"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"bitbucket.org/sotavant/quick-swapp/internal/unread"
	"bitbucket.org/sotavant/quick-swapp/internal/validation"
	"context"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"strings"
	"time"
)

var (
	ErrSelfConversation    = errors.New("cannot start a conversation with yourself")
	ErrInvalidParticipant  = errors.New("participant id is required")
	ErrInvalidItem         = errors.New("item id must be a canonical UUID")
	ErrConversationMissing = errors.New("conversation not found")
)

type Service struct {
	store      store.Store
	watermarks store.WatermarkStore
	publisher  notify.Publisher
	now        func() time.Time
}

func New(s store.Store, wm store.WatermarkStore, p notify.Publisher) *Service {
	if p == nil {
		p = notify.Nop{}
	}
	return &Service{store: s, watermarks: wm, publisher: p, now: time.Now}
}

// StartConversation returns the key of the existing conversation between
// me and other about item, or derives a new one.
func (s *Service) StartConversation(ctx context.Context, me, other models.UserID, item models.ItemID) (models.ConversationID, error) {
	if !validParticipant(me) || !validParticipant(other) {
		return "", ErrInvalidParticipant
	}
	if me == other {
		return "", ErrSelfConversation
	}
	if item != "" {
		if id, err := uuid.Parse(string(item)); err != nil || id.String() != string(item) {
			return "", ErrInvalidItem
		}
	}

	conv, err := s.store.FindConversation(ctx, me, other, item)
	if err == nil {
		metrics.ConversationsStarted.WithLabelValues("existing").Inc()
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", errors.Wrap(err, "find conversation")
	}

	metrics.ConversationsStarted.WithLabelValues("derived").Inc()
	return conversation.DeriveKey(me, other, item), nil
}

func (s *Service) Send(ctx context.Context, me, receiver models.UserID, item models.ItemID, body string) (models.Message, error) {
	if err := validation.Message(body); err != nil {
		return models.Message{}, err
	}

	conv, err := s.StartConversation(ctx, me, receiver, item)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := s.store.SaveMessage(ctx, models.Message{
		ConversationID: conv,
		SenderID:       me,
		ReceiverID:     receiver,
		ItemID:         item,
		Body:           body,
	})
	if err != nil {
		return models.Message{}, errors.Wrap(err, "save message")
	}
	metrics.MessagesSent.Inc()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		metrics.PublishFailures.Inc()
		logger.Log.Warn("cannot publish message event",
			zap.String("message_id", msg.ID),
			zap.String("conversation_id", string(msg.ConversationID)),
			zap.Error(err),
		)
	}

	return msg, nil
}

func (s *Service) Conversations(ctx context.Context, me models.UserID) ([]models.ConversationSummary, error) {
	msgs, wm, err := s.snapshot(ctx, me)
	if err != nil {
		return nil, err
	}
	return conversation.Summarize(msgs, me, wm), nil
}

func (s *Service) UnreadTotal(ctx context.Context, me models.UserID) (int, error) {
	msgs, wm, err := s.snapshot(ctx, me)
	if err != nil {
		return 0, err
	}
	return unread.Total(msgs, me, wm), nil
}

// Thread returns the messages of conv, oldest first, and records that me
// has seen everything up to the newest of them.
func (s *Service) Thread(ctx context.Context, me models.UserID, conv models.ConversationID) ([]models.Message, error) {
	msgs, err := s.store.ListConversationMessages(ctx, conv, me)
	if err != nil {
		return nil, errors.Wrap(err, "list conversation messages")
	}
	if len(msgs) == 0 {
		return nil, ErrConversationMissing
	}

	seen := msgs[0].CreatedAt
	for _, m := range msgs[1:] {
		if m.CreatedAt.After(seen) {
			seen = m.CreatedAt
		}
	}

	if err := s.markViewedAt(ctx, me, conv, seen); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkViewed overwrites the watermark of conv with the current time.
func (s *Service) MarkViewed(ctx context.Context, me models.UserID, conv models.ConversationID) error {
	return s.markViewedAt(ctx, me, conv, s.now())
}

// markViewedAt reads the whole watermark map, moves conv forward to at and
// writes the map back. A watermark never moves backwards.
func (s *Service) markViewedAt(ctx context.Context, me models.UserID, conv models.ConversationID, at time.Time) error {
	wm, err := s.watermarks.Read(ctx, me)
	if err != nil {
		return errors.Wrap(err, "read watermarks")
	}
	if wm == nil {
		wm = models.Watermarks{}
	}
	if prev, ok := wm[conv]; ok && !at.After(prev) {
		return nil
	}
	wm[conv] = at.UTC()

	return errors.Wrap(s.watermarks.Write(ctx, me, wm), "write watermarks")
}

func validParticipant(id models.UserID) bool {
	return id != "" && !strings.Contains(string(id), conversation.KeySeparator)
}

func (s *Service) snapshot(ctx context.Context, me models.UserID) ([]models.Message, models.Watermarks, error) {
	msgs, err := s.store.ListMessages(ctx, me)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list messages")
	}
	wm, err := s.watermarks.Read(ctx, me)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read watermarks")
	}
	return msgs, wm, nil
}
