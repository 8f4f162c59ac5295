package mockplatform

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/birbparty/commerce-sdk/internal/telemetry"
)

// CorrelationIDHeader is echoed back on every response.
const CorrelationIDHeader = "X-Correlation-ID"

// ErrorHandler renders every error as a platform error body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	resp := toErrorResponse(err)
	if resp.StatusCode >= fiber.StatusInternalServerError {
		telemetry.WithContext(c.UserContext()).
			WithError(err).
			WithField("path", c.Path()).
			Error("Request failed")
	}
	return c.Status(resp.StatusCode).JSON(resp)
}

func toErrorResponse(err error) ErrorResponse {
	var (
		conflict *ConflictError
		input    *InputError
		fe       *fiber.Error
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return NewErrorResponse(fiber.StatusNotFound, CodeResourceNotFound, "The Resource was not found.")
	case errors.Is(err, ErrDuplicate):
		return NewErrorResponse(fiber.StatusBadRequest, CodeDuplicateField, "A duplicate value was found: "+err.Error())
	case errors.As(err, &conflict):
		resp := NewErrorResponse(fiber.StatusConflict, CodeConcurrentModification, conflict.Error())
		current := conflict.Current
		resp.Errors[0].CurrentVersion = &current
		return resp
	case errors.As(err, &input):
		return NewErrorResponse(fiber.StatusBadRequest, CodeInvalidInput, input.Message)
	case errors.As(err, &fe):
		code := CodeGeneral
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeResourceNotFound
		case fiber.StatusUnauthorized:
			code = CodeInvalidToken
		}
		return NewErrorResponse(fe.Code, code, fe.Message)
	default:
		return NewErrorResponse(fiber.StatusInternalServerError, CodeGeneral, "Internal Server Error")
	}
}

// correlationID echoes the caller's correlation id, or assigns one.
func correlationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(CorrelationIDHeader)
		if id == "" {
			id = "mockplatform/" + uuid.NewString()
		}
		c.Set(CorrelationIDHeader, id)
		return c.Next()
	}
}

// latency delays every request by d.
func latency(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		select {
		case <-time.After(d):
		case <-c.UserContext().Done():
			return c.UserContext().Err()
		}
		return c.Next()
	}
}

type tokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newTokenStore() *tokenStore {
	return &tokenStore{tokens: make(map[string]time.Time)}
}

func (s *tokenStore) issue(ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = time.Now().Add(ttl)
	return token
}

func (s *tokenStore) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if ok && time.Now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return ok
}

// IssueToken handles POST /oauth/token with the client credentials grant.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	id, secret, ok := basicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok || id != h.cfg.ClientID || secret != h.cfg.ClientSecret || h.cfg.ClientID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":             CodeInvalidClient,
			"error_description": "Please provide valid client credentials using HTTP Basic Authentication.",
		})
	}
	if c.FormValue("grant_type") != "client_credentials" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             "unsupported_grant_type",
			"error_description": "Only client_credentials is supported.",
		})
	}
	scope := c.FormValue("scope")
	if scope == "" {
		scope = "manage_project"
	}
	return c.JSON(TokenResponse{
		AccessToken: h.tokens.issue(h.cfg.TokenTTL),
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.TokenTTL.Seconds()),
		Scope:       scope,
	})
}

func basicAuth(header string) (id, secret string, ok bool) {
	encoded, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// authenticate requires a bearer token issued by IssueToken. Without
// configured credentials every request passes.
func (h *Handler) authenticate(c *fiber.Ctx) error {
	if h.cfg.ClientID == "" {
		return c.Next()
	}
	token, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !found || !h.tokens.valid(token) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid_token")
	}
	return c.Next()
}
