package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
)

type stubRoles struct {
	privileged func(ctx context.Context, actorID string) (bool, error)
	roles      func(ctx context.Context, actorID string) ([]string, error)

	privCalls atomic.Int32
	roleCalls atomic.Int32
}

func (s *stubRoles) IsPrivileged(ctx context.Context, actorID string) (bool, error) {
	s.privCalls.Add(1)
	if s.privileged == nil {
		return false, nil
	}
	return s.privileged(ctx, actorID)
}

func (s *stubRoles) ListRoles(ctx context.Context, actorID string) ([]string, error) {
	s.roleCalls.Add(1)
	if s.roles == nil {
		return nil, nil
	}
	return s.roles(ctx, actorID)
}

func fixedRoles(privileged bool, roles ...string) *stubRoles {
	return &stubRoles{
		privileged: func(context.Context, string) (bool, error) { return privileged, nil },
		roles:      func(context.Context, string) ([]string, error) { return roles, nil },
	}
}

type memActors struct {
	mu   sync.Mutex
	rows map[string]*entity.Actor
}

func newMemActors(actors ...*entity.Actor) *memActors {
	m := &memActors{rows: map[string]*entity.Actor{}}
	for _, a := range actors {
		m.rows[a.ID] = a
	}
	return m
}

func (m *memActors) Create(_ context.Context, a *entity.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.ID] = a
	return nil
}

func (m *memActors) GetByID(_ context.Context, id string) (*entity.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memActors) GetByEmail(_ context.Context, email string) (*entity.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memActors) Update(_ context.Context, a *entity.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

type memChanges struct {
	mu      sync.Mutex
	rows    map[string]*entity.ChangeControl
	reviews []entity.ChangeReview
}

func newMemChanges(changes ...*entity.ChangeControl) *memChanges {
	m := &memChanges{rows: map[string]*entity.ChangeControl{}}
	for _, c := range changes {
		m.rows[c.ID] = c
	}
	return m
}

func (m *memChanges) Create(_ context.Context, c *entity.ChangeControl) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = "cc-new"
	}
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memChanges) GetByID(_ context.Context, id string) (*entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memChanges) List(_ context.Context, status entity.ChangeStatus, limit, offset int) ([]entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ChangeControl
	for _, c := range m.rows {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memChanges) RecordReview(_ context.Context, r *entity.ChangeReview, target entity.ChangeStatus) (*entity.ChangeControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[r.ChangeID]
	if !ok || c.Status != entity.ChangePendingReview {
		return nil, repo.ErrConflict
	}
	now := time.Now().UTC()
	c.Status = target
	c.ReviewedBy = r.ReviewerID
	c.ReviewComment = r.Comment
	c.ReviewedAt = &now
	r.CreatedAt = now
	m.reviews = append(m.reviews, *r)
	cp := *c
	return &cp, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}
