package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/whoamid/backend/repository"
)

// Provider maps an inbound request to the opaque identity token used as the
// user store key. It reports either a token or nothing: infrastructure
// failures during resolution are logged and treated as "no session", per the
// contract that a provider failure must not distinguish itself from an
// anonymous caller.
type Provider struct {
	sessions   repository.SessionRepository
	cookieName string
	secret     []byte
	logger     *zap.Logger
}

func NewProvider(sessions repository.SessionRepository, cookieName, secret string, logger *zap.Logger) *Provider {
	if cookieName == "" {
		cookieName = "session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		sessions:   sessions,
		cookieName: cookieName,
		secret:     []byte(secret),
		logger:     logger,
	}
}

// Identity resolves the signed session reference carried by the request into
// the session's user id. ok is false when no usable session is present.
func (p *Provider) Identity(ctx context.Context, req *fasthttp.RequestCtx) (string, bool) {
	raw := p.extractToken(req)
	if raw == "" {
		return "", false
	}

	sessionID, ok := p.verify(raw)
	if !ok {
		return "", false
	}

	session, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		p.logger.Warn("session lookup failed", zap.Error(err))
		return "", false
	}

	if session.IsExpired(time.Now()) {
		if err := p.sessions.Delete(ctx, sessionID); err != nil {
			p.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return "", false
	}

	return session.UserID, true
}

// extractToken prefers the session cookie and falls back to a bearer token,
// so both browser and API callers share one resolution path.
func (p *Provider) extractToken(req *fasthttp.RequestCtx) string {
	if cookie := req.Request.Header.Cookie(p.cookieName); len(cookie) > 0 {
		return string(cookie)
	}
	header := string(req.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func (p *Provider) verify(raw string) (string, bool) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		p.logger.Debug("rejecting unverifiable session token", zap.Error(err))
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", false
	}
	return sessionID, true
}
