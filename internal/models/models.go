package models

import "time"

type UserID string

type ItemID string

type ConversationID string

// Message is one row of a conversation. An empty ItemID means the
// conversation is not about a listing.
type Message struct {
	ID             string         `json:"id"`
	ConversationID ConversationID `json:"conversation_id"`
	SenderID       UserID         `json:"sender_id"`
	ReceiverID     UserID         `json:"receiver_id"`
	ItemID         ItemID         `json:"item_id,omitempty"`
	Body           string         `json:"message"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Watermarks maps a conversation to the last time the viewing user opened it.
type Watermarks map[ConversationID]time.Time

type StartConversationRequest struct {
	ParticipantID UserID `json:"participant_id"`
	ItemID        ItemID `json:"item_id,omitempty"`
}

type StartConversationResponse struct {
	ConversationID ConversationID `json:"conversation_id"`
}

type SendMessageRequest struct {
	ReceiverID UserID `json:"receiver_id"`
	ItemID     ItemID `json:"item_id,omitempty"`
	Body       string `json:"message"`
}

type ConversationSummary struct {
	ConversationID   ConversationID `json:"conversation_id"`
	OtherParticipant UserID         `json:"other_participant_id"`
	ItemID           ItemID         `json:"item_id,omitempty"`
	LastMessage      Message        `json:"last_message"`
	Unread           int            `json:"unread"`
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
