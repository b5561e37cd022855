package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/whoamid/backend/api/transport"
	"github.com/whoamid/backend/domain"
	whoamiUC "github.com/whoamid/backend/usecase/whoami"
)

type stubProvider struct {
	token string
	ok    bool
}

func (s stubProvider) Identity(ctx context.Context, req *fasthttp.RequestCtx) (string, bool) {
	return s.token, s.ok
}

type stubUserRepo struct {
	user *domain.User
	err  error
}

func (s stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) TouchSeen(ctx context.Context, id string, at time.Time) error {
	return nil
}

type stubSettingsRepo struct {
	settings *domain.Settings
	err      error
}

func (s stubSettingsRepo) GetByUserID(ctx context.Context, userID string) (*domain.Settings, error) {
	return s.settings, s.err
}

func newWhoamiHandler(users stubUserRepo, settings stubSettingsRepo, provider stubProvider) *WhoamiHandler {
	uc := whoamiUC.New(users, settings, nil, nil)
	return NewWhoamiHandler(uc, provider, nil, nil)
}

func performWhoami(t *testing.T, h *WhoamiHandler, configure func(*fasthttp.Request)) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(http.MethodGet)
	req.SetRequestURI("/api/v1/whoami")
	if configure != nil {
		configure(&req)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	h.Whoami(&ctx)
	return &ctx
}

func decodeWhoami(t *testing.T, ctx *fasthttp.RequestCtx) transport.WhoamiResponse {
	t.Helper()
	var resp transport.WhoamiResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	return resp
}

func TestWhoamiAnonymousWithCountry(t *testing.T) {
	h := newWhoamiHandler(stubUserRepo{}, stubSettingsRepo{}, stubProvider{})

	ctx := performWhoami(t, h, func(req *fasthttp.Request) {
		req.Header.Set("CloudFront-Viewer-Country-Name", "France")
	})

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"geo":{"country":"France"}}`, string(ctx.Response.Body()))
}

func TestWhoamiAnonymousWithoutHeader(t *testing.T) {
	h := newWhoamiHandler(stubUserRepo{}, stubSettingsRepo{}, stubProvider{})

	ctx := performWhoami(t, h, nil)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{}`, string(ctx.Response.Body()))
}

func TestWhoamiUndecodableCountryHeader(t *testing.T) {
	h := newWhoamiHandler(stubUserRepo{}, stubSettingsRepo{}, stubProvider{})

	ctx := performWhoami(t, h, func(req *fasthttp.Request) {
		req.Header.SetBytesKV([]byte("CloudFront-Viewer-Country-Name"), []byte{0xff, 0xfe, 0xfd})
	})

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decodeWhoami(t, ctx)
	require.NotNil(t, resp.Geo)
	assert.Equal(t, "Unknown", resp.Geo.Country)
	assert.Nil(t, resp.IsAuthenticated)
}

func TestWhoamiAuthenticated(t *testing.T) {
	avatar := "https://cdn.example.com/a.png"
	locale := "en-US"
	user := &domain.User{
		ID:               "user-123",
		Email:            "someone@example.com",
		AvatarURL:        &avatar,
		IsSubscriber:     true,
		SubscriptionType: "core",
	}
	settings := &domain.Settings{UserID: user.ID, Locale: &locale}
	h := newWhoamiHandler(
		stubUserRepo{user: user},
		stubSettingsRepo{settings: settings},
		stubProvider{token: user.ID, ok: true},
	)

	ctx := performWhoami(t, h, func(req *fasthttp.Request) {
		req.Header.Set("CloudFront-Viewer-Country-Name", "Germany")
	})

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decodeWhoami(t, ctx)
	require.NotNil(t, resp.IsAuthenticated)
	assert.True(t, *resp.IsAuthenticated)
	require.NotNil(t, resp.Username)
	assert.Equal(t, "user-123", *resp.Username)
	require.NotNil(t, resp.Email)
	assert.Equal(t, "someone@example.com", *resp.Email)
	require.NotNil(t, resp.AvatarURL)
	assert.Equal(t, avatar, *resp.AvatarURL)
	require.NotNil(t, resp.IsSubscriber)
	assert.True(t, *resp.IsSubscriber)
	require.NotNil(t, resp.SubscriptionType)
	assert.Equal(t, "core", *resp.SubscriptionType)
	require.NotNil(t, resp.Settings)
	assert.Equal(t, locale, *resp.Settings.Locale)
	require.NotNil(t, resp.Geo)
	assert.Equal(t, "Germany", resp.Geo.Country)
}

func TestWhoamiAuthenticatedWithoutSettingsRow(t *testing.T) {
	user := &domain.User{ID: "user-123", Email: "someone@example.com"}
	h := newWhoamiHandler(
		stubUserRepo{user: user},
		stubSettingsRepo{},
		stubProvider{token: user.ID, ok: true},
	)

	ctx := performWhoami(t, h, nil)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	resp := decodeWhoami(t, ctx)
	require.NotNil(t, resp.IsAuthenticated)
	assert.True(t, *resp.IsAuthenticated)
	assert.Nil(t, resp.Settings)
}

func TestWhoamiUnresolvableTokenIsUnauthorized(t *testing.T) {
	h := newWhoamiHandler(stubUserRepo{}, stubSettingsRepo{}, stubProvider{token: "ghost", ok: true})

	ctx := performWhoami(t, h, nil)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())

	var envelope transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, string(domain.ErrCodeUnauthorized), envelope.Code)
}

func TestWhoamiSettingsStoreFailure(t *testing.T) {
	user := &domain.User{ID: "user-123"}
	h := newWhoamiHandler(
		stubUserRepo{user: user},
		stubSettingsRepo{err: errors.New("settings table on fire")},
		stubProvider{token: user.ID, ok: true},
	)

	ctx := performWhoami(t, h, nil)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())

	var envelope transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "error", envelope.Status)
}

func TestWhoamiIdempotentForSameSession(t *testing.T) {
	user := &domain.User{ID: "user-123", Email: "someone@example.com"}
	h := newWhoamiHandler(
		stubUserRepo{user: user},
		stubSettingsRepo{},
		stubProvider{token: user.ID, ok: true},
	)

	first := performWhoami(t, h, nil)
	second := performWhoami(t, h, nil)

	assert.Equal(t, first.Response.Body(), second.Response.Body())
}
