// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

var tracer = otel.Tracer("schoolhub/auth")

// Operation names reported to the OperationRecorder.
const (
	OperationRegister     = "register"
	OperationLogin        = "login"
	OperationAuthenticate = "authenticate"
)

// Outcomes reported to the OperationRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// OperationRecorder receives one call per completed service operation.
type OperationRecorder interface {
	RecordAuthOperation(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthOperation(string, string) {}

// Session is the result of a successful registration or login.
type Session struct {
	Account *Account
	Token   string
}

// RegisterInput holds the fields submitted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Service provides registration, login and token authentication.
type Service struct {
	accounts AccountDirectory
	creds    *CredentialManager
	tokens   *TokenIssuer
	logger   *slog.Logger
	recorder OperationRecorder
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for operation and failure logging.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the recorder that counts operation outcomes.
func WithRecorder(r OperationRecorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithServiceClock overrides the time source for account timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. All three dependencies are required.
func NewService(accounts AccountDirectory, creds *CredentialManager, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("account directory is required")
	}
	if creds == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("credential manager is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token issuer is required")
	}

	s := &Service{
		accounts: accounts,
		creds:    creds,
		tokens:   tokens,
		logger:   slog.Default(),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a student account and issues its first token. The
// password is hashed only after every strength rule passes.
func (s *Service) Register(ctx context.Context, in RegisterInput) (session *Session, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer s.finish(span, OperationRegister, &err)

	name := strings.TrimSpace(in.Name)
	if err = ValidateName(name); err != nil {
		return nil, err
	}
	email := NormalizeIdentity(in.Email)
	if err = ValidateIdentity(email); err != nil {
		return nil, err
	}

	_, lookupErr := s.accounts.GetByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		return nil, identityTaken()
	case !errors.Is(lookupErr, ErrNotFound):
		errutil.LogError(s.logger, "account lookup failed", lookupErr, "operation", OperationRegister)
		return nil, unexpected(OperationRegister)
	}

	hash, err := s.creds.ValidateAndHash(in.Password)
	if err != nil {
		if ErrorCode(err) == CodeWeakPassword {
			return nil, err
		}
		errutil.LogError(s.logger, "password hashing failed", err, "operation", OperationRegister)
		return nil, unexpected(OperationRegister)
	}

	account, err := NewAccount(name, email, hash, s.now())
	if err != nil {
		return nil, err
	}

	if err = s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrIdentityTaken) {
			return nil, identityTaken()
		}
		errutil.LogError(s.logger, "account create failed", err, "operation", OperationRegister)
		return nil, unexpected(OperationRegister)
	}
	span.SetAttributes(attribute.String("account.id", account.ID.String()))

	token, err := s.issue(account, OperationRegister)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	return &Session{Account: account, Token: token}, nil
}

// Login verifies email and password and issues a token. An unknown email
// and a wrong password fail with the same AUTH_INVALID_CREDENTIALS error.
func (s *Service) Login(ctx context.Context, email, password string) (session *Session, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer s.finish(span, OperationLogin, &err)

	account, err := s.accounts.GetByEmail(ctx, NormalizeIdentity(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.creds.VerifyAbsent(password)
			s.logger.WarnContext(ctx, "login failed", "reason", "unknown identity")
			return nil, invalidCredentials()
		}
		errutil.LogError(s.logger, "account lookup failed", err, "operation", OperationLogin)
		return nil, unexpected(OperationLogin)
	}

	ok, err := s.creds.Verify(password, account.PasswordHash)
	if err != nil {
		errutil.LogError(s.logger, "password verification failed", err,
			"operation", OperationLogin, "account_id", account.ID.String())
		return nil, unexpected(OperationLogin)
	}
	if !ok {
		s.logger.WarnContext(ctx, "login failed",
			"reason", "password mismatch", "account_id", account.ID.String())
		return nil, invalidCredentials()
	}
	span.SetAttributes(attribute.String("account.id", account.ID.String()))

	token, err := s.issue(account, OperationLogin)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return &Session{Account: account, Token: token}, nil
}

// Authenticate verifies token and loads the account it names. Token errors
// are returned unchanged; a valid token whose account no longer exists fails
// with AUTH_ACCOUNT_NOT_FOUND.
func (s *Service) Authenticate(ctx context.Context, token string) (account *Account, err error) {
	ctx, span := tracer.Start(ctx, "auth.authenticate")
	defer s.finish(span, OperationAuthenticate, &err)

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("account.id", subject.String()))

	account, err = s.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeAccountNotFound).
				With("account_id", subject.String()).
				Errorf("account not found")
		}
		errutil.LogError(s.logger, "account lookup failed", err,
			"operation", OperationAuthenticate, "account_id", subject.String())
		return nil, unexpected(OperationAuthenticate)
	}
	return account, nil
}

func (s *Service) issue(account *Account, operation string) (string, error) {
	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		errutil.LogError(s.logger, "token issue failed", err,
			"operation", operation, "account_id", account.ID.String())
		return "", unexpected(operation)
	}
	return token, nil
}

func (s *Service) finish(span trace.Span, operation string, errp *error) {
	outcome := OutcomeSuccess
	if err := *errp; err != nil {
		outcome = OutcomeRejected
		if ErrorCode(err) == CodeUnexpected {
			outcome = OutcomeError
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorCode(err))
	}
	s.recorder.RecordAuthOperation(operation, outcome)
	span.End()
}

func identityTaken() error {
	return oops.Code(CodeIdentityTaken).Errorf(IdentityTakenMessage)
}
