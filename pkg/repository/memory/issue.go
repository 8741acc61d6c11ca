package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

type issueRepository struct {
	mu     sync.RWMutex
	issues map[model.IssueID]*model.Issue
}

func newIssueRepository() *issueRepository {
	return &issueRepository{
		issues: make(map[model.IssueID]*model.Issue),
	}
}

func (x *issueRepository) Create(ctx context.Context, issue *model.Issue) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.issues[issue.ID]; ok {
		return goerr.New("issue already exists", goerr.V("issue_id", issue.ID))
	}

	copied := *issue
	x.issues[issue.ID] = &copied
	return nil
}

func (x *issueRepository) Get(ctx context.Context, id model.IssueID) (*model.Issue, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	issue, ok := x.issues[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issue_id", id))
	}

	copied := *issue
	return &copied, nil
}

func (x *issueRepository) List(ctx context.Context) ([]*model.Issue, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	issues := make([]*model.Issue, 0, len(x.issues))
	for _, issue := range x.issues {
		copied := *issue
		issues = append(issues, &copied)
	}

	// newest first
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})

	return issues, nil
}

func (x *issueRepository) Update(ctx context.Context, issue *model.Issue) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.issues[issue.ID]; !ok {
		return goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issue_id", issue.ID))
	}

	copied := *issue
	x.issues[issue.ID] = &copied
	return nil
}

func (x *issueRepository) Delete(ctx context.Context, id model.IssueID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.issues[id]; !ok {
		return goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issue_id", id))
	}

	delete(x.issues, id)
	return nil
}
