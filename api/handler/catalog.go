package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/roamio/backend/api/transport"
	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/pkg/httpcontext"
	"github.com/roamio/backend/repository"
	catalogUC "github.com/roamio/backend/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.Service
}

func NewCatalogHandler(uc *catalogUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List packages of a type
// @Tags catalog
// @Router /api/v1/packages/{type} [get]
func (h *CatalogHandler) ListPackages(ctx *fasthttp.RequestCtx) {
	filter := repository.PackageFilter{
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pkgs, err := h.uc.List(stdCtx, typeTag(ctx), filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pkgs)
}

// @Summary Get a single package
// @Tags catalog
// @Router /api/v1/packages/{type}/{id} [get]
func (h *CatalogHandler) GetPackage(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing package id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pkg, err := h.uc.Get(stdCtx, typeTag(ctx), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pkg)
}

// @Summary Create a package
// @Tags catalog-admin
// @Router /api/v1/admin/packages/{type} [post]
func (h *CatalogHandler) CreatePackage(ctx *fasthttp.RequestCtx) {
	pkg, images, ok := h.parsePackage(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, typeTag(ctx), pkg, images)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a package, reconciling its media
// @Tags catalog-admin
// @Router /api/v1/admin/packages/{type}/{id} [put]
func (h *CatalogHandler) UpdatePackage(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing package id")
		return
	}
	pkg, images, ok := h.parsePackage(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, typeTag(ctx), id, pkg, images)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a package and tear down its media
// @Tags catalog-admin
// @Router /api/v1/admin/packages/{type}/{id} [delete]
func (h *CatalogHandler) DeletePackage(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing package id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, typeTag(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List destinations
// @Tags destinations
// @Router /api/v1/destinations [get]
func (h *CatalogHandler) ListDestinations(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dests, err := h.uc.Destinations(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dests)
}

// @Summary Get a destination
// @Tags destinations
// @Router /api/v1/destinations/{id} [get]
func (h *CatalogHandler) GetDestination(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing destination id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dest, err := h.uc.Destination(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dest)
}

// @Summary Create or update a destination
// @Tags catalog-admin
// @Router /api/v1/admin/destinations [post]
func (h *CatalogHandler) SaveDestination(ctx *fasthttp.RequestCtx) {
	var req transport.DestinationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name == "" {
		h.respondInvalid(ctx, "invalid destination payload")
		return
	}

	dest := &domain.Destination{
		Name:        req.Name,
		Description: req.Description,
		Region:      req.Region,
		PackageRefs: req.PackageRefs,
	}
	if id, ok := ctx.UserValue("id").(string); ok {
		dest.ID = id
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SaveDestination(stdCtx, dest); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dest)
}

// @Summary Delete a destination
// @Tags catalog-admin
// @Router /api/v1/admin/destinations/{id} [delete]
func (h *CatalogHandler) DeleteDestination(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing destination id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteDestination(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *CatalogHandler) parsePackage(ctx *fasthttp.RequestCtx) (*domain.Package, []domain.ProposedImage, bool) {
	var req transport.PackageRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid package payload")
		return nil, nil, false
	}

	pkg := &domain.Package{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		PriceOnward: req.PriceOnward,
		Places:      req.Places,
		Highlights:  req.Highlights,
		Inclusions:  req.Inclusions,
		Exclusions:  req.Exclusions,
	}
	for _, day := range req.Itinerary {
		pkg.Itinerary = append(pkg.Itinerary, domain.DayPlan{
			Day:         day.Day,
			Title:       day.Title,
			Description: day.Description,
		})
	}
	if req.AvailabilityStart != "" {
		if start, err := time.Parse(time.RFC3339, req.AvailabilityStart); err == nil {
			pkg.Availability.Start = start
		}
	}
	if req.AvailabilityEnd != "" {
		if end, err := time.Parse(time.RFC3339, req.AvailabilityEnd); err == nil {
			pkg.Availability.End = end
		}
	}

	images := make([]domain.ProposedImage, 0, len(req.Images))
	for _, entry := range req.Images {
		if entry.AssetID != "" {
			images = append(images, domain.ProposedImage{
				Ref: &domain.AssetRef{AssetID: entry.AssetID, URL: entry.URL},
			})
			continue
		}
		if len(entry.Data) == 0 {
			h.respondInvalid(ctx, "image entry needs either asset_id or data")
			return nil, nil, false
		}
		images = append(images, domain.ProposedImage{
			Filename: entry.Filename,
			Data:     entry.Data,
		})
	}

	return pkg, images, true
}

func typeTag(ctx *fasthttp.RequestCtx) domain.PackageType {
	tag, _ := ctx.UserValue("type").(string)
	return domain.PackageType(tag)
}

func pathID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	return id, id != ""
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
