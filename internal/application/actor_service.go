package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/qms-core/internal/domain/entity"
	repo "github.com/oksasatya/qms-core/internal/domain/repository"
	"github.com/oksasatya/qms-core/pkg/helpers"
)

const sessionTTL = 24 * time.Hour

// ActorService authenticates actors and manages their Redis-backed sessions.
type ActorService struct {
	Repo   repo.ActorRepository
	Roles  repo.RoleLookup
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	ActorID string `json:"actor_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Profile is the actor as shown to itself, including its assigned role names.
type Profile struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	AvatarURL  string   `json:"avatar_url"`
	IsVerified bool     `json:"is_verified"`
	Roles      []string `json:"roles"`
}

type UpdateProfileInput struct {
	Name      string
	AvatarURL string
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewActorService(actors repo.ActorRepository, roles repo.RoleLookup, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *ActorService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &ActorService{Repo: actors, Roles: roles, JWT: jwt, Redis: rdb, Logger: logger}
}

// Authenticate validates email/password and returns the actor without issuing tokens.
func (s *ActorService) Authenticate(ctx context.Context, email, password string) (*entity.Actor, error) {
	a, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *ActorService) IssueTokens(ctx context.Context, a *entity.Actor) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(a.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("actor_id", a.ID).Error("generate tokens failed")
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"actor_id":   a.ID,
			"email":      a.Email,
			"name":       a.Name,
			"avatar_url": a.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := helpers.SessionKey(a.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

func (s *ActorService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	a, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResponse{ActorID: a.ID, Email: a.Email, Name: a.Name}, pair, nil
}

// Refresh rotates the session id and both tokens. The refresh token must carry the current sid.
func (s *ActorService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	a, err := s.Repo.GetByID(ctx, claims.ActorID)
	if err != nil || a == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	key := helpers.SessionKey(a.ID)
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, key, "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}

	sid := uuid.NewString()
	pair, err := s.signPair(a.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, a.ID, nil
}

// Logout drops the actor's session; tokens referencing it stop being accepted.
func (s *ActorService) Logout(ctx context.Context, actorID string) error {
	if s.Redis == nil || actorID == "" {
		return nil
	}
	return s.Redis.Del(ctx, helpers.SessionKey(actorID)).Err()
}

func (s *ActorService) GetProfile(ctx context.Context, actorID string) (*Profile, error) {
	a, err := s.Repo.GetByID(ctx, actorID)
	if err != nil || a == nil {
		return nil, ErrActorNotFound
	}
	roles, err := s.Roles.ListRoles(ctx, actorID)
	if err != nil {
		return nil, &LookupError{Op: "list_roles", ActorID: actorID, Err: err}
	}
	return newProfile(a, roles), nil
}

// UpdateProfile persists name/avatar changes and mirrors them into the session hash, keeping its TTL.
func (s *ActorService) UpdateProfile(ctx context.Context, actorID string, in UpdateProfileInput) (*entity.Actor, error) {
	a, err := s.Repo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	if in.Name != "" {
		a.Name = in.Name
	}
	if in.AvatarURL != "" {
		a.AvatarURL = in.AvatarURL
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(a.ID)
		ttl, tErr := s.Redis.TTL(ctx, key).Result()
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       a.Name,
			"avatar_url": a.AvatarURL,
			"updated_at": nowRFC3339(),
		})
		if tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return a, nil
}

func (s *ActorService) signPair(actorID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(actorID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(actorID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func newProfile(a *entity.Actor, roles []string) *Profile {
	if roles == nil {
		roles = []string{}
	}
	return &Profile{
		ID:         a.ID,
		Email:      a.Email,
		Name:       a.Name,
		AvatarURL:  a.AvatarURL,
		IsVerified: a.IsVerified,
		Roles:      roles,
	}
}
