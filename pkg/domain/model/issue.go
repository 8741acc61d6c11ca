package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/types"
)

// IssueID is the identifier of a reported issue
type IssueID string

// NewIssueID generates a new issue ID
func NewIssueID() IssueID {
	return IssueID(uuid.New().String())
}

// String returns the string representation of the issue ID
func (x IssueID) String() string {
	return string(x)
}

// Issue is a user-reported problem captured from chat
type Issue struct {
	ID          IssueID           `json:"id" firestore:"id"`
	UserID      string            `json:"user_id" firestore:"user_id"`
	Description string            `json:"description" firestore:"description"`
	Status      types.IssueStatus `json:"status" firestore:"status"`
	CreatedAt   time.Time         `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" firestore:"updated_at"`
}

// NewIssue creates a pending issue from a chat report
func NewIssue(userID, description string) *Issue {
	now := time.Now().UTC()
	return &Issue{
		ID:          NewIssueID(),
		UserID:      userID,
		Description: description,
		Status:      types.IssueStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Transition moves the issue to the next status, enforcing forward-only moves
func (x *Issue) Transition(next types.IssueStatus) error {
	if !next.IsValid() {
		return goerr.Wrap(types.ErrValidation, "unknown issue status", goerr.V("status", next))
	}
	if !x.Status.CanTransitionTo(next) {
		return goerr.Wrap(types.ErrInvalidTransition, "issue status cannot move backward",
			goerr.V("issue_id", x.ID),
			goerr.V("from", x.Status),
			goerr.V("to", next),
		)
	}
	x.Status = next
	x.UpdatedAt = time.Now().UTC()
	return nil
}
