package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/mmfactory/pizzeria-backend/pkg/auth"
	"github.com/mmfactory/pizzeria-backend/pkg/config"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/security"
)

// Session is the minted dashboard credential returned on login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service gates the dashboard behind the shared passphrase.
type Service interface {
	Login(ctx context.Context, passphrase string) (*Session, error)
}

type service struct {
	cfg  config.AdminConfig
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams holds the dependencies for NewService.
type ServiceParams struct {
	Admin  config.AdminConfig
	Logger *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Admin.Passphrase == "" {
		return nil, fmt.Errorf("admin service requires a configured passphrase")
	}
	if params.Admin.JWTSecret == "" {
		return nil, fmt.Errorf("admin service requires a signing secret")
	}

	return &service{
		cfg:  params.Admin,
		logg: params.Logger,
		now:  time.Now,
	}, nil
}

// Login verifies the passphrase and mints a bearer token for the dashboard.
// The configured passphrase may be an argon2id hash or a plain value.
func (s *service) Login(ctx context.Context, passphrase string) (*Session, error) {
	ok, err := security.VerifyPassphrase(passphrase, s.cfg.Passphrase)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify passphrase")
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(ctx, "admin login rejected")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid passphrase")
	}

	now := s.now()
	token, err := auth.MintAdminToken(s.cfg, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}

	return &Session{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.cfg.ExpirationMinutes) * time.Minute),
	}, nil
}
