package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/roamio/backend/api/transport"
	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/internal/middleware"
	"github.com/roamio/backend/pkg/httpcontext"
	favoritesUC "github.com/roamio/backend/usecase/favorites"
)

type FavoritesHandler struct {
	baseHandler
	uc *favoritesUC.Service
}

func NewFavoritesHandler(uc *favoritesUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Toggle a favorite package
// @Tags favorites
// @Router /api/v1/favorites/{type}/{id} [post]
func (h *FavoritesHandler) Toggle(ctx *fasthttp.RequestCtx) {
	principal := h.principal(ctx)
	if principal == nil {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing package id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.uc.Toggle(stdCtx, principal.ID, typeTag(ctx), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"state": string(state)})
}

// @Summary List favorited packages
// @Tags favorites
// @Router /api/v1/favorites [get]
func (h *FavoritesHandler) List(ctx *fasthttp.RequestCtx) {
	principal := h.principal(ctx)
	if principal == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pkgs, err := h.uc.List(stdCtx, principal.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pkgs)
}

func (h *FavoritesHandler) principal(ctx *fasthttp.RequestCtx) *domain.Principal {
	principal := middleware.PrincipalFrom(ctx)
	if principal == nil {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "authentication required", nil))
	}
	return principal
}
