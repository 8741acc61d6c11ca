package types

import "fmt"

// IssueStatus represents the lifecycle status of a reported issue
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
)

// AllIssueStatuses returns all valid issue statuses
func AllIssueStatuses() []IssueStatus {
	return []IssueStatus{
		IssueStatusPending,
		IssueStatusInProgress,
		IssueStatusResolved,
	}
}

// IsValid checks if the issue status is valid
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusPending,
		IssueStatusInProgress,
		IssueStatusResolved:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to next is allowed. Status only moves
// forward: pending→in_progress, pending→resolved, in_progress→resolved.
// resolved is terminal and issues never reopen automatically.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	switch s {
	case IssueStatusPending:
		return next == IssueStatusInProgress || next == IssueStatusResolved
	case IssueStatusInProgress:
		return next == IssueStatusResolved
	default:
		return false
	}
}

// String returns the string representation of the issue status
func (s IssueStatus) String() string {
	return string(s)
}

// ParseIssueStatus parses a string into an IssueStatus
func ParseIssueStatus(s string) (IssueStatus, error) {
	status := IssueStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid issue status: %s", s)
	}
	return status, nil
}
