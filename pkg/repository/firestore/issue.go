package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
)

type issueDoc struct {
	ID          model.IssueID `firestore:"ID"`
	UserID      string        `firestore:"UserID"`
	Description string        `firestore:"Description"`
	Status      string        `firestore:"Status"`
	CreatedAt   time.Time     `firestore:"CreatedAt"`
	UpdatedAt   time.Time     `firestore:"UpdatedAt"`
}

func toIssueDoc(issue *model.Issue) *issueDoc {
	return &issueDoc{
		ID:          issue.ID,
		UserID:      issue.UserID,
		Description: issue.Description,
		Status:      issue.Status.String(),
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func fromIssueDoc(d *issueDoc) *model.Issue {
	return &model.Issue{
		ID:          d.ID,
		UserID:      d.UserID,
		Description: d.Description,
		Status:      types.IssueStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type issueRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIssueRepository(client *firestore.Client) *issueRepository {
	return &issueRepository{client: client}
}

func (r *issueRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "issues")
}

func (r *issueRepository) Create(ctx context.Context, issue *model.Issue) error {
	docRef := r.collection().Doc(string(issue.ID))
	if _, err := docRef.Create(ctx, toIssueDoc(issue)); err != nil {
		return goerr.Wrap(err, "failed to create issue", goerr.V("issueID", issue.ID))
	}
	return nil
}

func (r *issueRepository) Get(ctx context.Context, id model.IssueID) (*model.Issue, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issueID", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue", goerr.V("issueID", id))
	}

	var d issueDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal issue", goerr.V("issueID", id))
	}

	return fromIssueDoc(&d), nil
}

func (r *issueRepository) List(ctx context.Context) ([]*model.Issue, error) {
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	issues := make([]*model.Issue, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate issues")
		}

		var d issueDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal issue")
		}

		issues = append(issues, fromIssueDoc(&d))
	}

	return issues, nil
}

func (r *issueRepository) Update(ctx context.Context, issue *model.Issue) error {
	docRef := r.collection().Doc(string(issue.ID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issueID", issue.ID))
		}
		return goerr.Wrap(err, "failed to get issue", goerr.V("issueID", issue.ID))
	}

	if _, err := docRef.Set(ctx, toIssueDoc(issue)); err != nil {
		return goerr.Wrap(err, "failed to update issue", goerr.V("issueID", issue.ID))
	}

	return nil
}

func (r *issueRepository) Delete(ctx context.Context, id model.IssueID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "issue not found", goerr.V("issueID", id))
		}
		return goerr.Wrap(err, "failed to get issue", goerr.V("issueID", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete issue", goerr.V("issueID", id))
	}

	return nil
}
