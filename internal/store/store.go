package store

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"context"
	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mock/store.go -package=mock . Store,WatermarkStore

var ErrNotFound = errors.New("not found")

// WatermarkKeyPrefix namespaces persisted last-read maps, one per user.
const WatermarkKeyPrefix = "quick-swapp-last-read:"

type Store interface {
	// FindConversation returns ErrNotFound when the pair has never talked
	// about item.
	FindConversation(ctx context.Context, a, b models.UserID, item models.ItemID) (models.ConversationID, error)
	ListMessages(ctx context.Context, userID models.UserID) ([]models.Message, error)
	ListConversationMessages(ctx context.Context, conv models.ConversationID, userID models.UserID) ([]models.Message, error)
	// SaveMessage assigns ID and CreatedAt.
	SaveMessage(ctx context.Context, msg models.Message) (models.Message, error)
}

// WatermarkStore keeps the whole last-read map of a user as a single value.
type WatermarkStore interface {
	Read(ctx context.Context, userID models.UserID) (models.Watermarks, error)
	Write(ctx context.Context, userID models.UserID, wm models.Watermarks) error
}

func WatermarkKey(userID models.UserID) string {
	return WatermarkKeyPrefix + string(userID)
}
