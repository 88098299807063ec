package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/qms-core/internal/domain/entity"
)

func TestCheckReviewPermission_Scenarios(t *testing.T) {
	cases := []struct {
		name       string
		privileged bool
		roles      []string
		want       bool
	}{
		{"privileged without roles", true, nil, true},
		{"qa role", false, []string{"qa"}, true},
		{"manager role", false, []string{"manager"}, true},
		{"admin role", false, []string{"admin"}, true},
		{"viewer only", false, []string{"viewer"}, false},
		{"no roles", false, []string{}, false},
		{"unknown role names", false, []string{"Admin", "supervisor", " qa"}, false},
		{"mixed set", false, []string{"viewer", "auditor", "manager"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate := NewAuthorizationGate(fixedRoles(tc.privileged, tc.roles...), nil, time.Second)
			perm, err := gate.CheckReviewPermission(context.Background(), "actor-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, perm.CanReview)
		})
	}
}

func TestCheckReviewPermission_Unauthenticated(t *testing.T) {
	roles := fixedRoles(true, "admin")
	gate := NewAuthorizationGate(roles, nil, 0)

	perm, err := gate.CheckReviewPermission(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, perm.CanReview)
	assert.Zero(t, roles.privCalls.Load())
	assert.Zero(t, roles.roleCalls.Load())
}

func TestCheckReviewPermission_LookupFailureDenies(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("role lookup fails while privileged", func(t *testing.T) {
		roles := &stubRoles{
			privileged: func(context.Context, string) (bool, error) { return true, nil },
			roles:      func(context.Context, string) ([]string, error) { return nil, boom },
		}
		perm, err := NewAuthorizationGate(roles, nil, 0).CheckReviewPermission(context.Background(), "actor-1")
		assert.False(t, perm.CanReview)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLookup)
		assert.ErrorIs(t, err, boom)

		var le *LookupError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "list_roles", le.Op)
		assert.Equal(t, "actor-1", le.ActorID)
	})

	t.Run("privilege check fails with admin role", func(t *testing.T) {
		roles := &stubRoles{
			privileged: func(context.Context, string) (bool, error) { return false, boom },
			roles:      func(context.Context, string) ([]string, error) { return []string{"admin"}, nil },
		}
		perm, err := NewAuthorizationGate(roles, nil, 0).CheckReviewPermission(context.Background(), "actor-1")
		assert.False(t, perm.CanReview)
		assert.ErrorIs(t, err, ErrLookup)
	})
}

func TestCheckReviewPermission_LookupsRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	both := make(chan struct{})
	go func() {
		started.Wait()
		close(both)
	}()

	wait := func(ctx context.Context) error {
		started.Done()
		select {
		case <-both:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	roles := &stubRoles{
		privileged: func(ctx context.Context, _ string) (bool, error) { return false, wait(ctx) },
		roles: func(ctx context.Context, _ string) ([]string, error) {
			if err := wait(ctx); err != nil {
				return nil, err
			}
			return []string{"qa"}, nil
		},
	}

	// a sequential gate would block on the first lookup until the timeout fires
	perm, err := NewAuthorizationGate(roles, nil, 2*time.Second).CheckReviewPermission(context.Background(), "actor-1")
	require.NoError(t, err)
	assert.True(t, perm.CanReview)
}

func TestCheckReviewPermission_CancelledCallerIsDenied(t *testing.T) {
	release := make(chan struct{})
	roles := &stubRoles{
		// ignores ctx and reports a positive answer after the caller has gone
		privileged: func(context.Context, string) (bool, error) {
			<-release
			return true, nil
		},
		roles: func(context.Context, string) ([]string, error) { return []string{"admin"}, nil },
	}
	gate := NewAuthorizationGate(roles, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		perm entity.ReviewPermission
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		p, err := gate.CheckReviewPermission(ctx, "actor-1")
		done <- outcome{p, err}
	}()

	cancel()
	close(release)

	select {
	case out := <-done:
		assert.False(t, out.perm.CanReview)
		assert.ErrorIs(t, out.err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not return")
	}
}

func TestCheckReviewPermission_AlreadyCancelled(t *testing.T) {
	roles := fixedRoles(true, "admin")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	perm, err := NewAuthorizationGate(roles, nil, 0).CheckReviewPermission(ctx, "actor-1")
	assert.False(t, perm.CanReview)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, roles.privCalls.Load())
}

func TestCheckReviewPermission_TimeoutDenies(t *testing.T) {
	roles := &stubRoles{
		privileged: func(ctx context.Context, _ string) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		},
		roles: func(context.Context, string) ([]string, error) { return []string{"qa"}, nil },
	}
	perm, err := NewAuthorizationGate(roles, nil, 20*time.Millisecond).CheckReviewPermission(context.Background(), "actor-1")
	assert.False(t, perm.CanReview)
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckReviewPermission_NoStateAcrossActors(t *testing.T) {
	assigned := map[string][]string{
		"alice": {"qa"},
		"bob":   {"viewer"},
		"carol": {},
		"dave":  {"manager", "viewer"},
	}
	roles := &stubRoles{
		privileged: func(_ context.Context, id string) (bool, error) { return id == "carol", nil },
		roles: func(_ context.Context, id string) ([]string, error) {
			return assigned[id], nil
		},
	}
	want := map[string]bool{"alice": true, "bob": false, "carol": true, "dave": true}
	gate := NewAuthorizationGate(roles, nil, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for id := range want {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				perm, err := gate.CheckReviewPermission(context.Background(), id)
				assert.NoError(t, err)
				assert.Equal(t, want[id], perm.CanReview, id)
			}(id)
		}
	}
	wg.Wait()
}

func TestCheckReviewPermission_MatchesPredicate(t *testing.T) {
	pool := []string{"admin", "qa", "manager", "viewer", "auditor", "ADMIN", "", "ops"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		privileged := rng.Intn(2) == 0
		var names []string
		for _, n := range pool {
			if rng.Intn(3) == 0 {
				names = append(names, n)
			}
		}

		want := privileged
		for _, n := range names {
			if n == "admin" || n == "qa" || n == "manager" {
				want = true
			}
		}

		gate := NewAuthorizationGate(fixedRoles(privileged, names...), nil, 0)
		perm, err := gate.CheckReviewPermission(context.Background(), fmt.Sprintf("actor-%d", i))
		require.NoError(t, err)
		require.Equal(t, want, perm.CanReview, "privileged=%v roles=%v", privileged, names)
	}
}
