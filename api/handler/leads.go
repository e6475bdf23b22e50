package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/roamio/backend/api/transport"
	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/internal/middleware"
	"github.com/roamio/backend/pkg/httpcontext"
	"github.com/roamio/backend/repository"
	leadsUC "github.com/roamio/backend/usecase/leads"
)

type LeadsHandler struct {
	baseHandler
	uc *leadsUC.Service
}

func NewLeadsHandler(uc *leadsUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *LeadsHandler {
	return &LeadsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit a booking inquiry
// @Tags leads
// @Router /api/v1/leads [post]
func (h *LeadsHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.LeadRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid lead payload")
		return
	}

	lead := &domain.Lead{
		PackageType:      domain.PackageType(req.PackageType),
		PackageID:        req.PackageID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		SpecialRequests:  req.SpecialRequests,
		AlternateContact: req.AlternateContact,
		PriceMax:         req.PriceMax,
	}
	for _, t := range req.Travelers {
		lead.Travelers = append(lead.Travelers, domain.Traveler{
			Name:  t.Name,
			Email: t.Email,
			Phone: t.Phone,
		})
	}
	if req.StartDate != "" {
		if start, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			lead.StartDate = start
		}
	}

	// Anonymous submission is fine; attach the user only when resolved.
	if principal := middleware.PrincipalFrom(ctx); principal != nil {
		lead.UserID = principal.ID
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Submit(stdCtx, lead)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List leads
// @Tags leads-admin
// @Router /api/v1/admin/leads [get]
func (h *LeadsHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.LeadFilter{
		PackageID: string(ctx.QueryArgs().Peek("package_id")),
		Status:    string(ctx.QueryArgs().Peek("status")),
		Limit:     parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:    parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leads, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, leads)
}

// @Summary Get a lead
// @Tags leads-admin
// @Router /api/v1/admin/leads/{id} [get]
func (h *LeadsHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing lead id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lead, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, lead)
}

// @Summary Update lead status
// @Tags leads-admin
// @Router /api/v1/admin/leads/{id} [put]
func (h *LeadsHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing lead id")
		return
	}

	var req transport.LeadStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Status == "" {
		h.respondInvalid(ctx, "status is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.UpdateStatus(stdCtx, id, req.Status); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete a lead
// @Tags leads-admin
// @Router /api/v1/admin/leads/{id} [delete]
func (h *LeadsHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing lead id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
