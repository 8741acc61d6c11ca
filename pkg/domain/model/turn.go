package model

import (
	"time"

	"github.com/agentic-store/concierge/pkg/domain/types"
)

// ConversationTurn is one utterance in a chat session
type ConversationTurn struct {
	Role      types.Role `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
}

// SessionWindow is the maximum number of turns kept per session. Older turns
// are evicted FIFO.
const SessionWindow = 20
