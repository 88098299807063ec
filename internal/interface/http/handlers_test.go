package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/qms-core/internal/application"
	"github.com/oksasatya/qms-core/internal/domain/entity"
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/internal/interface/middleware"
	"github.com/oksasatya/qms-core/pkg/helpers"
	"github.com/oksasatya/qms-core/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type gateFunc func(ctx context.Context, actorID string) (entity.ReviewPermission, error)

func (f gateFunc) CheckReviewPermission(ctx context.Context, actorID string) (entity.ReviewPermission, error) {
	return f(ctx, actorID)
}

func allowIf(ids ...string) gateFunc {
	return func(_ context.Context, actorID string) (entity.ReviewPermission, error) {
		for _, id := range ids {
			if id == actorID && actorID != "" {
				return entity.ReviewPermission{CanReview: true}, nil
			}
		}
		return entity.ReviewPermission{}, nil
	}
}

func failingGate(err error) gateFunc {
	return func(context.Context, string) (entity.ReviewPermission, error) {
		return entity.ReviewPermission{}, &application.LookupError{Op: "list_roles", Err: err}
	}
}

// asActor stands in for Auth/OptionalAuth: X-Actor names the caller, absent means anonymous.
func asActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Actor"); id != "" {
			c.Set(middleware.CtxActorIDKey, id)
		}
		c.Next()
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, actor string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestReviewPermissionEndpoint(t *testing.T) {
	cases := []struct {
		name  string
		gate  application.PermissionChecker
		actor string
		want  bool
	}{
		{"reviewer", allowIf("qa-1"), "qa-1", true},
		{"viewer", allowIf("qa-1"), "viewer-1", false},
		{"anonymous", allowIf("qa-1"), "", false},
		{"lookup failure", failingGate(errors.New("db down")), "qa-1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthorizationHandler(tc.gate)
			r := gin.New()
			r.GET("/review-permission", asActor(), h.ReviewPermission)

			w, env := do(t, r, http.MethodGet, "/review-permission", tc.actor, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var perm entity.ReviewPermission
			require.NoError(t, json.Unmarshal(env.Data, &perm))
			assert.Equal(t, tc.want, perm.CanReview)
			assert.Contains(t, string(env.Data), `"can_review"`)
		})
	}
}

func TestPresentationCategoryEndpoint(t *testing.T) {
	r := gin.New()
	r.GET("/category", NewPresentationHandler().Category)

	cases := []struct {
		query    string
		code     int
		category string
		label    string
		render   bool
	}{
		{"?status=Open&show_label=true", http.StatusOK, "info", "Open", true},
		{"?status=Closed&severity=Critical", http.StatusOK, "neutral", "", true},
		{"?severity=Critical&show_label=1", http.StatusOK, "danger", "Critical", true},
		{"?status=Archived", http.StatusOK, "neutral", "", true},
		{"?kind=change_control&status=Rejected", http.StatusOK, "danger", "", true},
		{"", http.StatusOK, "", "", false},
		{"?kind=ticket&status=Open", http.StatusBadRequest, "", "", false},
		{"?status=Open&show_label=maybe", http.StatusBadRequest, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/category"+tc.query, "", nil)
			require.Equal(t, tc.code, w.Code)
			if tc.code != http.StatusOK {
				return
			}
			var got categoryResponse
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, tc.category, string(got.Category))
			assert.Equal(t, tc.label, got.Label)
			assert.Equal(t, tc.render, got.Render)
		})
	}
}

const (
	pendingChangeID = "0b6f9a52-3c1e-4d59-9a43-6c2f1e0d7a11"
	doneChangeID    = "5d2c8e4b-7f10-4a6b-8b3e-2e9c4f6a1b22"
	missingChangeID = "9e1d3b7c-2a4f-4c8e-a5d6-7f8e9a0b1c33"
)

type memChangeRepo struct {
	mu   sync.Mutex
	rows map[string]entity.ChangeControl
}

func (m *memChangeRepo) Create(_ context.Context, c *entity.ChangeControl) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = "cc-created"
	m.rows[c.ID] = *c
	return nil
}

func (m *memChangeRepo) GetByID(_ context.Context, id string) (*entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &c, nil
}

func (m *memChangeRepo) List(_ context.Context, status entity.ChangeStatus, _, _ int) ([]entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ChangeControl
	for _, c := range m.rows {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memChangeRepo) RecordReview(_ context.Context, r *entity.ChangeReview, target entity.ChangeStatus) (*entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[r.ChangeID]
	if !ok || c.Status != entity.ChangePendingReview {
		return nil, repo.ErrConflict
	}
	now := time.Now().UTC()
	c.Status, c.ReviewedBy, c.ReviewComment, c.ReviewedAt = target, r.ReviewerID, r.Comment, &now
	m.rows[c.ID] = c
	return &c, nil
}

func newChangeRouter(gate application.PermissionChecker) *gin.Engine {
	return newChangeRouterWithLogger(gate, helpers.NopLogger())
}

func newChangeRouterWithLogger(gate application.PermissionChecker, logger *logrus.Logger) *gin.Engine {
	changes := &memChangeRepo{rows: map[string]entity.ChangeControl{
		pendingChangeID: {ID: pendingChangeID, Title: "Swap gasket vendor", Status: entity.ChangePendingReview, RequestedBy: "req-1"},
		doneChangeID:    {ID: doneChangeID, Title: "Old change", Status: entity.ChangeApproved, RequestedBy: "req-1"},
	}}
	svc := application.NewChangeControlService(changes, nil, gate, nil, nil, logger)
	h := NewChangeControlHandler(svc, gate, logger)

	r := gin.New()
	g := r.Group("/change-controls", asActor())
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/review", h.Review)
	return r
}

func TestChangeControlReviewEndpoint(t *testing.T) {
	cases := []struct {
		name   string
		gate   application.PermissionChecker
		id     string
		body   any
		code   int
		status string
	}{
		{"qa approves", allowIf("qa-1"), pendingChangeID, gin.H{"decision": "approve", "comment": "ok"}, http.StatusOK, "Approved"},
		{"qa rejects", allowIf("qa-1"), pendingChangeID, gin.H{"decision": "reject"}, http.StatusOK, "Rejected"},
		{"viewer denied", allowIf("someone-else"), pendingChangeID, gin.H{"decision": "approve"}, http.StatusForbidden, ""},
		{"lookup failure denied", failingGate(errors.New("timeout")), pendingChangeID, gin.H{"decision": "approve"}, http.StatusForbidden, ""},
		{"not pending", allowIf("qa-1"), doneChangeID, gin.H{"decision": "approve"}, http.StatusConflict, ""},
		{"missing change", allowIf("qa-1"), missingChangeID, gin.H{"decision": "approve"}, http.StatusNotFound, ""},
		{"bad decision", allowIf("qa-1"), pendingChangeID, gin.H{"decision": "maybe"}, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newChangeRouter(tc.gate)
			w, env := do(t, r, http.MethodPost, "/change-controls/"+tc.id+"/review", "qa-1", tc.body)
			require.Equal(t, tc.code, w.Code, w.Body.String())
			if tc.code != http.StatusOK {
				assert.False(t, env.Success)
				return
			}
			var got changeDTO
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, "qa-1", got.ReviewedBy)
			assert.False(t, got.CanReview)
		})
	}
}

func TestChangeControlListCarriesPermission(t *testing.T) {
	r := newChangeRouter(allowIf("qa-1"))

	w, env := do(t, r, http.MethodGet, "/change-controls?status=Pending%20Review", "qa-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []changeDTO
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CanReview)
	assert.Equal(t, "attention", string(rows[0].StatusCategory))
	assert.Equal(t, true, env.Meta["can_review"])

	_, env = do(t, r, http.MethodGet, "/change-controls/"+pendingChangeID, "viewer-1", nil)
	var one changeDTO
	require.NoError(t, json.Unmarshal(env.Data, &one))
	assert.False(t, one.CanReview)

	w, _ = do(t, r, http.MethodGet, "/change-controls?status=Bogus", "qa-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeControlCreate(t *testing.T) {
	r := newChangeRouter(allowIf())

	w, env := do(t, r, http.MethodPost, "/change-controls", "req-1", gin.H{"title": "Update SOP-12"})
	require.Equal(t, http.StatusCreated, w.Code)
	var got changeDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Pending Review", got.Status)
	assert.Equal(t, "req-1", got.RequestedBy)

	w, env = do(t, r, http.MethodPost, "/change-controls", "req-1", gin.H{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "title")
}

func TestChangeControlMalformedID(t *testing.T) {
	var calls atomic.Int32
	gate := gateFunc(func(context.Context, string) (entity.ReviewPermission, error) {
		calls.Add(1)
		return entity.ReviewPermission{CanReview: true}, nil
	})
	r := newChangeRouter(gate)

	w, env := do(t, r, http.MethodGet, "/change-controls/abc", "qa-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, string(env.Error), "must be a valid UUID")

	w, _ = do(t, r, http.MethodPost, "/change-controls/abc/review", "qa-1", gin.H{"decision": "approve"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Zero(t, calls.Load())
}

func TestComplaintMalformedID(t *testing.T) {
	h := NewComplaintHandler(&application.ComplaintService{}, helpers.NopLogger())
	r := gin.New()
	r.GET("/complaints/:id", h.Get)
	r.PATCH("/complaints/:id/status", h.UpdateStatus)
	r.POST("/complaints/:id/attachment", h.UploadAttachment)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/complaints/abc", nil},
		{http.MethodPatch, "/complaints/abc/status", gin.H{"status": "Closed"}},
		{http.MethodPost, "/complaints/abc/attachment", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w, env := do(t, r, tc.method, tc.path, "a-1", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, string(env.Error), `"id"`)
		})
	}
}

func TestLookupFailureNotLoggedByHandlers(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := newChangeRouterWithLogger(failingGate(errors.New("timeout")), logger)

	w, _ := do(t, r, http.MethodGet, "/change-controls/"+pendingChangeID, "qa-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, "/change-controls/"+pendingChangeID+"/review", "qa-1", gin.H{"decision": "approve"})
	require.Equal(t, http.StatusForbidden, w.Code)

	for _, e := range hook.AllEntries() {
		assert.Greater(t, e.Level, logrus.WarnLevel, e.Message)
	}
}
