package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/types"
)

func TestIssueStatusTransitions(t *testing.T) {
	cases := []struct {
		from types.IssueStatus
		to   types.IssueStatus
		ok   bool
	}{
		{types.IssueStatusPending, types.IssueStatusInProgress, true},
		{types.IssueStatusPending, types.IssueStatusResolved, true},
		{types.IssueStatusInProgress, types.IssueStatusResolved, true},
		{types.IssueStatusInProgress, types.IssueStatusPending, false},
		{types.IssueStatusResolved, types.IssueStatusPending, false},
		{types.IssueStatusResolved, types.IssueStatusInProgress, false},
		{types.IssueStatusPending, types.IssueStatusPending, false},
	}

	for _, tc := range cases {
		gt.Value(t, tc.from.CanTransitionTo(tc.to)).Equal(tc.ok)
	}
}

func TestParseIssueStatus(t *testing.T) {
	status, err := types.ParseIssueStatus("in_progress")
	gt.NoError(t, err).Required()
	gt.Value(t, status).Equal(types.IssueStatusInProgress)

	_, err = types.ParseIssueStatus("reopened")
	gt.Error(t, err)
}
