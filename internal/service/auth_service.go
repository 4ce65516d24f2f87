// Package service holds the authentication flow: validate, look up,
// verify, and shape the outcome.
package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/login-service/internal/metrics"
	"github.com/iliyamo/login-service/internal/model"
	"github.com/iliyamo/login-service/internal/queue"
	"github.com/iliyamo/login-service/internal/repository"
)

// UserStore looks up credential records by normalised username.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// Verifier compares secrets with stored hashes.
type Verifier interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) bool
	NeedsRehash(stored string) bool
}

// EventPublisher receives one event per decided attempt.  Publish must not
// block.
type EventPublisher interface {
	Publish(ev queue.LoginAttemptEvent) bool
}

// LoginRequest is one login attempt.  Secret is only held for the duration
// of the call.
type LoginRequest struct {
	Username string `json:"usuario" validate:"required,max=255"`
	Secret   string `json:"password" validate:"required,max=1024"`

	RequestID string `json:"-" validate:"-"`
	RemoteIP  string `json:"-" validate:"-"`
}

// AuthService decides login attempts.  It keeps no per-request state and
// is safe for concurrent use.
type AuthService struct {
	users    UserStore
	verifier Verifier
	log      *zap.Logger
	metrics  *metrics.Login
	events   EventPublisher
	validate *validator.Validate

	// dummyHash is verified against when the username is unknown so both
	// rejections cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService wires the service.  m and events may be nil.
func NewAuthService(users UserStore, verifier Verifier, log *zap.Logger, m *metrics.Login, events EventPublisher) (*AuthService, error) {
	dummy, err := verifier.Hash("timing-equaliser-not-a-real-secret")
	if err != nil {
		return nil, errors.Wrap(err, "prepare dummy hash")
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AuthService{
		users:     users,
		verifier:  verifier,
		log:       log,
		metrics:   m,
		events:    events,
		validate:  v,
		dummyHash: dummy,
	}, nil
}

// Authenticate runs one attempt through validation, lookup and
// verification.  Every path ends in exactly one Outcome.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) Outcome {
	start := time.Now()
	req.Username = NormalizeUsername(req.Username)

	if err := s.validate.Struct(req); err != nil {
		return s.finish(req, start, malformed(validationDetail(err)), zap.NamedError("validation", err))
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.verifier.Verify(req.Secret, s.dummyHash)
		return s.finish(req, start, invalidCredentials(), zap.String("reason", "unknown_user"))
	case errors.Is(err, repository.ErrConnection):
		return s.finish(req, start, storeUnavailable(MsgStoreConnection), zap.Error(err))
	case err != nil:
		return s.finish(req, start, storeUnavailable(MsgInternal), zap.Error(err))
	}

	if !s.verifier.Verify(req.Secret, u.PasswordHash) {
		return s.finish(req, start, invalidCredentials(), zap.String("reason", "wrong_secret"))
	}

	fields := []zap.Field{zap.Int64("user_id", u.ID)}
	if s.verifier.NeedsRehash(u.PasswordHash) {
		fields = append(fields, zap.Bool("weak_hash", true))
		if s.metrics != nil {
			s.metrics.WeakHashes.Inc()
		}
	}
	return s.finish(req, start, success(u.Profile()), fields...)
}

// Reject records a request whose payload could not be parsed at all.
func (s *AuthService) Reject(req LoginRequest, detail string) Outcome {
	req.Username = NormalizeUsername(req.Username)
	return s.finish(req, time.Now(), malformed(detail))
}

// NormalizeUsername trims surrounding whitespace and lower-cases; usernames
// are case-insensitive identifiers.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// finish emits the single log line, metric sample and audit event of a
// terminal state.  The secret is never part of any of them.
func (s *AuthService) finish(req LoginRequest, start time.Time, out Outcome, extra ...zap.Field) Outcome {
	fields := append([]zap.Field{
		zap.String("username", req.Username),
		zap.String("outcome", out.Kind.String()),
		zap.String("request_id", req.RequestID),
		zap.String("remote_ip", req.RemoteIP),
	}, extra...)

	switch out.Kind {
	case OutcomeSuccess:
		s.log.Info("login succeeded", fields...)
	case OutcomeInvalidCredentials:
		s.log.Warn("login rejected", fields...)
	case OutcomeMalformedRequest:
		s.log.Info("login request malformed", append(fields, zap.String("detail", out.Message))...)
	case OutcomeStoreUnavailable:
		s.log.Error("credential store unavailable", fields...)
	}

	s.metrics.Observe(out.Kind.String(), start)

	if s.events != nil {
		ok := s.events.Publish(queue.LoginAttemptEvent{
			Username:   req.Username,
			Outcome:    out.Kind.String(),
			RequestID:  req.RequestID,
			RemoteIP:   req.RemoteIP,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
		if !ok {
			s.log.Debug("audit event dropped", zap.String("request_id", req.RequestID))
		}
	}
	return out
}

// validationDetail turns validator errors into the client message.  A
// missing field wins over a length violation.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MsgMissingFields
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return MsgMissingFields
		}
	}
	return fmt.Sprintf("El campo %s excede la longitud máxima de %s caracteres", verrs[0].Field(), verrs[0].Param())
}
