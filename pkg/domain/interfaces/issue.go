package interfaces

import (
	"context"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

// IssueRepository persists user-reported issues
type IssueRepository interface {
	Create(ctx context.Context, issue *model.Issue) error
	Get(ctx context.Context, id model.IssueID) (*model.Issue, error)
	List(ctx context.Context) ([]*model.Issue, error)
	Update(ctx context.Context, issue *model.Issue) error
	Delete(ctx context.Context, id model.IssueID) error
}
