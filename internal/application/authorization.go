package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	"github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

// AuthorizationGate decides whether an actor may review change controls.
// It keeps no state between calls; each check reads the role store afresh.
type AuthorizationGate struct {
	Roles   repository.RoleLookup
	Logger  *logrus.Logger
	Timeout time.Duration // per check; zero means the caller's deadline only
}

func NewAuthorizationGate(roles repository.RoleLookup, logger *logrus.Logger, timeout time.Duration) *AuthorizationGate {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &AuthorizationGate{Roles: roles, Logger: logger, Timeout: timeout}
}

// CheckReviewPermission evaluates privileged OR (roles ∩ {admin, qa, manager} ≠ ∅) for actorID.
//
// An empty actorID is an unauthenticated caller and is denied without any lookup.
// The privilege and role lookups run concurrently; if either fails the result is a
// denial together with a *LookupError. If ctx ends before the join completes the
// result is discarded and a denial is returned with ctx.Err().
func (g *AuthorizationGate) CheckReviewPermission(ctx context.Context, actorID string) (entity.ReviewPermission, error) {
	var denied entity.ReviewPermission
	if actorID == "" {
		return denied, nil
	}
	if err := ctx.Err(); err != nil {
		return denied, err
	}

	lookupCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	var (
		privileged bool
		names      []string
	)
	eg, egCtx := errgroup.WithContext(lookupCtx)
	eg.Go(func() error {
		ok, err := g.Roles.IsPrivileged(egCtx, actorID)
		if err != nil {
			return &LookupError{Op: "is_privileged", ActorID: actorID, Err: err}
		}
		privileged = ok
		return nil
	})
	eg.Go(func() error {
		roles, err := g.Roles.ListRoles(egCtx, actorID)
		if err != nil {
			return &LookupError{Op: "list_roles", ActorID: actorID, Err: err}
		}
		names = roles
		return nil
	})

	if err := eg.Wait(); err != nil {
		entry := g.Logger.WithError(err).WithField("actor_id", actorID)
		if errors.Is(err, context.Canceled) {
			entry.Debug("review permission check abandoned")
		} else {
			entry.Warn("review permission lookup failed; denying")
		}
		return denied, err
	}

	// the caller may have gone away while the lookups were in flight
	if err := ctx.Err(); err != nil {
		return denied, err
	}

	return entity.ReviewPermission{CanReview: entity.CanReview(privileged, entity.NewRoleSet(names))}, nil
}
