package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is returned to the client after each user message. The trip
// creation sentinel is never part of Text.
type ChatReply struct {
	Text         string     `json:"text"`
	TripCreated  bool       `json:"tripCreated"`
	CollectionID *uuid.UUID `json:"collectionId,omitempty"`
	UsedFallback bool       `json:"usedFallback,omitempty"`
}

type ChatSessionResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// GeneratedTrip is the typed shape a one-shot itinerary generation must
// parse into before it is turned into a Collection.
type GeneratedTrip struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Budget    float64  `json:"budget"`
	Plans     []Plan   `json:"plans"`
	Notes     []string `json:"notes,omitempty"`
}
