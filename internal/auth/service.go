package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/internal/members"
	pkgAuth "github.com/irmandades/ghala-backend/pkg/auth"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/metrics"
)

// SessionStore keeps one live session token id per member.
type SessionStore interface {
	StoreSession(ctx context.Context, memberID, tokenID string, ttl time.Duration) error
	RevokeSession(ctx context.Context, memberID string) error
}

// Service handles PIN login and session lifecycle.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, memberID uuid.UUID) error
}

type service struct {
	members  members.Service
	sessions SessionStore
	jwt      config.JWTConfig
	metrics  *metrics.DomainMetrics
}

// LoginRequest carries the PIN credential.
type LoginRequest struct {
	PIN string `json:"pin" validate:"required,len=4,numeric"`
}

// LoginResult is the issued session plus the authenticated member.
type LoginResult struct {
	AccessToken      string         `json:"access_token"`
	ExpiresInMinutes int            `json:"expires_in_minutes"`
	Member           *models.Member `json:"member"`
}

// NewService wires the auth service.
func NewService(membersSvc members.Service, sessions SessionStore, jwt config.JWTConfig, domainMetrics *metrics.DomainMetrics) (Service, error) {
	if membersSvc == nil {
		return nil, fmt.Errorf("members service required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &service{
		members:  membersSvc,
		sessions: sessions,
		jwt:      jwt,
		metrics:  domainMetrics,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	member, err := s.members.Authenticate(ctx, req.PIN)
	if err != nil {
		s.metrics.IncLoginAttempt("denied")
		return nil, err
	}

	jti := uuid.NewString()
	token, err := pkgAuth.MintAccessToken(s.jwt, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		MemberID: member.ID,
		Role:     member.Role,
		JTI:      jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	ttl := time.Duration(s.jwt.ExpirationMinutes) * time.Minute
	if err := s.sessions.StoreSession(ctx, member.ID.String(), jti, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	s.metrics.IncLoginAttempt("granted")
	return &LoginResult{
		AccessToken:      token,
		ExpiresInMinutes: s.jwt.ExpirationMinutes,
		Member:           member,
	}, nil
}

func (s *service) Logout(ctx context.Context, memberID uuid.UUID) error {
	if memberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	if err := s.sessions.RevokeSession(ctx, memberID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
