package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/login-service/internal/model"
	"github.com/iliyamo/login-service/internal/service"
)

// Authenticator is the part of the auth service the handler depends on.
type Authenticator interface {
	Authenticate(ctx context.Context, req service.LoginRequest) service.Outcome
	Reject(req service.LoginRequest, detail string) service.Outcome
}

// AuthHandler bundles dependencies for the login endpoint.
type AuthHandler struct {
	Auth    Authenticator
	Timeout time.Duration
}

func NewAuthHandler(a Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{Auth: a, Timeout: timeout}
}

// ----- DTOs -----

type loginResp struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	User    *model.Profile `json:"user,omitempty"`
}

// Login: parse {"usuario","password"}, authenticate, map the outcome.
func (h *AuthHandler) Login(c echo.Context) error {
	meta := requestMeta(c)

	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(ctype), echo.MIMEApplicationJSON) {
		return respond(c, h.Auth.Reject(meta, service.MsgContentType))
	}

	req := meta
	if err := c.Bind(&req); err != nil {
		msg := service.MsgInvalidJSON
		if isTooLarge(err) {
			msg = service.MsgBodyTooLarge
		}
		return respond(c, h.Auth.Reject(meta, msg))
	}

	ctx := c.Request().Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	return respond(c, h.Auth.Authenticate(ctx, req))
}

// ErrorHandler answers errors raised around the login handler (body limit,
// recovered panics) with the login response shape.  Requests to other
// paths go to fallback.
func (h *AuthHandler) ErrorHandler(path string, log *zap.Logger, fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Request().Method != http.MethodPost || c.Request().URL.Path != path {
			fallback(err, c)
			return
		}
		if c.Response().Committed {
			return
		}

		var out service.Outcome
		if isTooLarge(err) {
			out = h.Auth.Reject(requestMeta(c), service.MsgBodyTooLarge)
		} else {
			log.Error("login request failed", zap.Error(err),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			out = service.Outcome{Kind: service.OutcomeStoreUnavailable, Message: service.MsgInternal}
		}
		if err := respond(c, out); err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func requestMeta(c echo.Context) service.LoginRequest {
	return service.LoginRequest{
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		RemoteIP:  c.RealIP(),
	}
}

func isTooLarge(err error) bool {
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}

// StatusFor maps an outcome to its HTTP status code.
func StatusFor(k service.OutcomeKind) int {
	switch k {
	case service.OutcomeSuccess:
		return http.StatusOK
	case service.OutcomeInvalidCredentials:
		return http.StatusUnauthorized
	case service.OutcomeMalformedRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(c echo.Context, out service.Outcome) error {
	if out.Kind == service.OutcomeSuccess {
		p := out.Profile
		return c.JSON(http.StatusOK, loginResp{Success: true, User: &p})
	}
	return c.JSON(StatusFor(out.Kind), loginResp{Success: false, Message: out.Message})
}
