package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
)

func TestIssueTransition(t *testing.T) {
	issue := model.NewIssue("user-1", "checkout fails")
	gt.Value(t, issue.Status).Equal(types.IssueStatusPending)

	gt.NoError(t, issue.Transition(types.IssueStatusInProgress)).Required()
	gt.Value(t, issue.Status).Equal(types.IssueStatusInProgress)

	err := issue.Transition(types.IssueStatusPending)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrInvalidTransition)).True()
	gt.Value(t, issue.Status).Equal(types.IssueStatusInProgress)

	gt.NoError(t, issue.Transition(types.IssueStatusResolved)).Required()

	err = issue.Transition(types.IssueStatusResolved)
	gt.Error(t, err)
}
