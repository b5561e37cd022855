package handler

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/whoamid/backend/api/transport"
	"github.com/whoamid/backend/pkg/httpcontext"
	whoamiUC "github.com/whoamid/backend/usecase/whoami"
)

// viewerCountryHeader is injected by the CDN edge; its value is free-form text.
const viewerCountryHeader = "CloudFront-Viewer-Country-Name"

// SessionProvider resolves the inbound request to an opaque session token.
// Absence of a token is the only "failure" it can report.
type SessionProvider interface {
	Identity(ctx context.Context, req *fasthttp.RequestCtx) (token string, ok bool)
}

type WhoamiHandler struct {
	baseHandler
	sessions SessionProvider
	uc       *whoamiUC.UseCase
}

func NewWhoamiHandler(uc *whoamiUC.UseCase, sessions SessionProvider, adapter *httpcontext.Adapter, logger *zap.Logger) *WhoamiHandler {
	return &WhoamiHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
		uc:          uc,
	}
}

// @Summary Describe the current caller
// @Tags whoami
// @Success 200 {object} transport.WhoamiResponse
// @Router /api/v1/whoami [get]
func (h *WhoamiHandler) Whoami(ctx *fasthttp.RequestCtx) {
	geo := extractGeo(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, ok := h.sessions.Identity(stdCtx, ctx)

	identity, err := h.uc.Resolve(stdCtx, token, ok)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	resp := transport.NewWhoamiResponse(geo)
	if identity != nil {
		resp = resp.WithIdentity(identity.User, identity.Settings)
	}
	h.respondDocument(ctx, http.StatusOK, resp)
}

// extractGeo reads the viewer country header. A missing header means no geo
// block at all; a value that is not valid text degrades to "Unknown" instead
// of failing the request.
func extractGeo(ctx *fasthttp.RequestCtx) *transport.GeoInfo {
	raw := ctx.Request.Header.Peek(viewerCountryHeader)
	if raw == nil {
		return nil
	}
	country := "Unknown"
	if utf8.Valid(raw) {
		country = string(raw)
	}
	return &transport.GeoInfo{Country: country}
}
