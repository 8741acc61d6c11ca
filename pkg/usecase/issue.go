package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
)

// FileIssue records a user-reported problem as a pending issue
func (uc *UseCases) FileIssue(ctx context.Context, userID, description string) (*model.Issue, error) {
	issue := model.NewIssue(userID, description)
	if err := uc.repo.Issue().Create(ctx, issue); err != nil {
		return nil, goerr.Wrap(err, "failed to file issue", goerr.V("userID", userID))
	}
	return issue, nil
}

// ListIssues returns all issues, newest first
func (uc *UseCases) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	return uc.repo.Issue().List(ctx)
}

// GetIssue returns one issue by ID
func (uc *UseCases) GetIssue(ctx context.Context, id model.IssueID) (*model.Issue, error) {
	return uc.repo.Issue().Get(ctx, id)
}

// UpdateIssueStatus moves an issue to the next status, enforcing
// forward-only transitions.
func (uc *UseCases) UpdateIssueStatus(ctx context.Context, id model.IssueID, next types.IssueStatus) (*model.Issue, error) {
	issue, err := uc.repo.Issue().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := issue.Transition(next); err != nil {
		return nil, err
	}

	if err := uc.repo.Issue().Update(ctx, issue); err != nil {
		return nil, goerr.Wrap(err, "failed to update issue", goerr.V("issueID", id))
	}

	return issue, nil
}

// DeleteIssue removes an issue from the ledger
func (uc *UseCases) DeleteIssue(ctx context.Context, id model.IssueID) error {
	return uc.repo.Issue().Delete(ctx, id)
}
