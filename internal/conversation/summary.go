package conversation

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/unread"
	"sort"
)

// Summarize builds one summary per conversation that involves user, newest
// conversation first. Messages not sent by or to user are ignored.
func Summarize(msgs []models.Message, user models.UserID, wm models.Watermarks) []models.ConversationSummary {
	latest := make(map[models.ConversationID]models.Message)
	order := make([]models.ConversationID, 0)
	mine := make([]models.Message, 0, len(msgs))

	for _, m := range msgs {
		if m.SenderID != user && m.ReceiverID != user {
			continue
		}
		mine = append(mine, m)

		cur, ok := latest[m.ConversationID]
		if !ok {
			order = append(order, m.ConversationID)
			latest[m.ConversationID] = m
			continue
		}
		if m.CreatedAt.After(cur.CreatedAt) {
			latest[m.ConversationID] = m
		}
	}

	counts := unread.ByConversation(mine, user, wm)

	out := make([]models.ConversationSummary, 0, len(order))
	for _, id := range order {
		last := latest[id]
		out = append(out, models.ConversationSummary{
			ConversationID:   id,
			OtherParticipant: OtherParticipant(last, user),
			ItemID:           last.ItemID,
			LastMessage:      last,
			Unread:           counts[id],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].LastMessage.CreatedAt, out[j].LastMessage.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ConversationID < out[j].ConversationID
	})

	return out
}

// OtherParticipant returns the side of m that is not user.
func OtherParticipant(m models.Message, user models.UserID) models.UserID {
	if m.SenderID == user {
		return m.ReceiverID
	}
	return m.SenderID
}
