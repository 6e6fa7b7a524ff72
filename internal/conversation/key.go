package conversation

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"sort"
	"strings"
)

// KeySeparator must not appear inside user or item ids. inbox.Service
// rejects ids that contain it.
const KeySeparator = ":"

// DeriveKey returns the conversation key for two participants and an
// optional subject item. The result does not depend on argument order.
// Self-pairs are not rejected here.
func DeriveKey(a, b models.UserID, subject models.ItemID) models.ConversationID {
	parts := make([]string, 0, 3)
	parts = append(parts, string(a), string(b))
	if subject != "" {
		parts = append(parts, string(subject))
	}
	sort.Strings(parts)

	return models.ConversationID(strings.Join(parts, KeySeparator))
}
