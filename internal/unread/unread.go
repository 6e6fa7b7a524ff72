package unread

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
)

// Count returns how many messages of conv were sent to user by someone else
// after the user last viewed conv. Without a watermark every incoming
// message is unread.
func Count(msgs []models.Message, user models.UserID, wm models.Watermarks, conv models.ConversationID) int {
	n := 0
	for _, m := range msgs {
		if m.ConversationID != conv {
			continue
		}
		if isUnread(m, user, wm) {
			n++
		}
	}
	return n
}

// ByConversation has an entry, possibly zero, for every conversation in msgs.
func ByConversation(msgs []models.Message, user models.UserID, wm models.Watermarks) map[models.ConversationID]int {
	counts := make(map[models.ConversationID]int)
	for _, m := range msgs {
		if _, ok := counts[m.ConversationID]; !ok {
			counts[m.ConversationID] = 0
		}
		if isUnread(m, user, wm) {
			counts[m.ConversationID]++
		}
	}
	return counts
}

func Total(msgs []models.Message, user models.UserID, wm models.Watermarks) int {
	total := 0
	for _, n := range ByConversation(msgs, user, wm) {
		total += n
	}
	return total
}

func isUnread(m models.Message, user models.UserID, wm models.Watermarks) bool {
	if m.ReceiverID != user || m.SenderID == user {
		return false
	}
	seen, ok := wm[m.ConversationID]
	if !ok {
		return true
	}
	return m.CreatedAt.After(seen)
}
