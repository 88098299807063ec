package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/qms-core/config"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/pkg/mailer"
	"github.com/oksasatya/qms-core/pkg/mailer/templates"
)

type changeFixture struct {
	svc     *ChangeControlService
	changes *memChanges
	pub     *recordingPublisher
}

func newChangeFixture(t *testing.T, roles *stubRoles, status entity.ChangeStatus) changeFixture {
	t.Helper()
	actors := newMemActors(
		&entity.Actor{ID: "req-1", Email: "requester@example.com", Name: "Rina"},
		&entity.Actor{ID: "rev-1", Email: "reviewer@example.com", Name: "Budi"},
	)
	changes := newMemChanges(&entity.ChangeControl{
		ID:          "cc-1",
		Title:       "Replace filling nozzle supplier",
		Status:      status,
		RequestedBy: "req-1",
	})
	pub := &recordingPublisher{}
	cfg := &config.Config{AppName: "qms-core", ChangeControlURL: "http://qms.local/change-controls/", NotifySendEnabled: true}
	gate := NewAuthorizationGate(roles, nil, 0)
	return changeFixture{
		svc:     NewChangeControlService(changes, actors, gate, pub, cfg, nil),
		changes: changes,
		pub:     pub,
	}
}

func TestReview_ApproveByQA(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "qa"), entity.ChangePendingReview)

	got, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "  looks good ")
	require.NoError(t, err)
	assert.Equal(t, entity.ChangeApproved, got.Status)
	assert.Equal(t, "rev-1", got.ReviewedBy)
	assert.Equal(t, "looks good", got.ReviewComment)
	require.NotNil(t, got.ReviewedAt)

	require.Len(t, f.changes.reviews, 1)
	assert.Equal(t, entity.DecisionApprove, f.changes.reviews[0].Decision)

	require.Len(t, f.pub.jobs, 1)
	job, ok := f.pub.jobs[0].(mailer.NotificationJob)
	require.True(t, ok)
	assert.Equal(t, "requester@example.com", job.To)
	assert.Equal(t, templates.ChangeReview, job.Template)
	assert.Equal(t, "Approved", job.Data["Status"])
	assert.Equal(t, "success", job.Data["StatusCategory"])
	assert.Equal(t, "http://qms.local/change-controls/cc-1", job.Data["ChangeURL"])
}

func TestReview_RejectByPrivilegedActor(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(true), entity.ChangePendingReview)

	got, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionReject, "")
	require.NoError(t, err)
	assert.Equal(t, entity.ChangeRejected, got.Status)
}

func TestReview_ViewerForbidden(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "viewer"), entity.ChangePendingReview)

	_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
	assert.ErrorIs(t, err, ErrReviewForbidden)
	assert.NotErrorIs(t, err, ErrLookup)
	assert.Empty(t, f.changes.reviews)
	assert.Empty(t, f.pub.jobs)
}

func TestReview_LookupFailureForbidden(t *testing.T) {
	roles := &stubRoles{
		privileged: func(context.Context, string) (bool, error) { return true, nil },
		roles:      func(context.Context, string) ([]string, error) { return nil, errors.New("timeout") },
	}
	f := newChangeFixture(t, roles, entity.ChangePendingReview)

	_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
	assert.ErrorIs(t, err, ErrReviewForbidden)
	assert.ErrorIs(t, err, ErrLookup)
	assert.Empty(t, f.changes.reviews)
}

func TestReview_UnauthenticatedForbidden(t *testing.T) {
	roles := fixedRoles(true, "admin")
	f := newChangeFixture(t, roles, entity.ChangePendingReview)

	_, err := f.svc.Review(context.Background(), "", "cc-1", entity.DecisionApprove, "")
	assert.ErrorIs(t, err, ErrReviewForbidden)
	assert.Zero(t, roles.privCalls.Load())
}

func TestReview_NotPending(t *testing.T) {
	for _, st := range []entity.ChangeStatus{entity.ChangeDraft, entity.ChangeApproved, entity.ChangeClosed} {
		t.Run(string(st), func(t *testing.T) {
			f := newChangeFixture(t, fixedRoles(false, "manager"), st)
			_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
			assert.ErrorIs(t, err, ErrNotReviewable)
		})
	}
}

func TestReview_SecondDecisionConflicts(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "admin"), entity.ChangePendingReview)

	_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionReject, "")
	assert.ErrorIs(t, err, ErrNotReviewable)
	assert.Len(t, f.changes.reviews, 1)
}

func TestReview_InvalidDecisionAndMissingChange(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "qa"), entity.ChangePendingReview)

	_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.ReviewDecision("maybe"), "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = f.svc.Review(context.Background(), "rev-1", "cc-404", entity.DecisionApprove, "")
	assert.ErrorIs(t, err, ErrChangeNotFound)
}

func TestReview_PublishFailureDoesNotFailReview(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "qa"), entity.ChangePendingReview)
	f.pub.err = errors.New("channel closed")

	got, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, entity.ChangeApproved, got.Status)
}

func TestReview_NotificationsDisabled(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false, "qa"), entity.ChangePendingReview)
	f.svc.Cfg.NotifySendEnabled = false

	_, err := f.svc.Review(context.Background(), "rev-1", "cc-1", entity.DecisionApprove, "")
	require.NoError(t, err)
	assert.Empty(t, f.pub.jobs)
}

func TestCreateChange(t *testing.T) {
	f := newChangeFixture(t, fixedRoles(false), entity.ChangeDraft)

	draft, err := f.svc.Create(context.Background(), "req-1", CreateChangeInput{Title: " New SOP ", Description: "rev B", Draft: true})
	require.NoError(t, err)
	assert.Equal(t, entity.ChangeDraft, draft.Status)
	assert.Equal(t, "New SOP", draft.Title)
	assert.Equal(t, "req-1", draft.RequestedBy)

	submitted, err := f.svc.Create(context.Background(), "req-1", CreateChangeInput{Title: "Line 3 layout"})
	require.NoError(t, err)
	assert.Equal(t, entity.ChangePendingReview, submitted.Status)
}
