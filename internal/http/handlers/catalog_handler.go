package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/http/response"
	"github.com/skypark/bookings/internal/pricing"
)

type CatalogHandler struct {
	Catalog  catalog.Source
	OpenTime domain.OpenTimeSet
}

func NewCatalogHandler(src catalog.Source, openTime domain.OpenTimeSet) *CatalogHandler {
	return &CatalogHandler{Catalog: src, OpenTime: openTime}
}

// packageView adds what the booking page needs to render a package.
type packageView struct {
	domain.Package
	OpenTime bool `json:"open_time"`
}

func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/packages", h.listPackages)
	r.Get("/packages/{id}", h.getPackage)
	r.Get("/addons", h.listAddons)
	r.Get("/upsells", h.listUpsells)
	r.Get("/time-slots", h.timeSlots)
	return r
}

func (h *CatalogHandler) view(p domain.Package) packageView {
	return packageView{Package: p, OpenTime: pricing.IsOpenTimePackage(p.ID, h.OpenTime)}
}

func (h *CatalogHandler) listPackages(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkgs := snap.Packages()
	out := make([]packageView, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, h.view(p))
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getPackage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p := snap.Package(chi.URLParam(r, "id"))
	if p == nil || p.Category == domain.CategoryAddon {
		response.NotFound(w, "package not found")
		return
	}
	response.JSON(w, http.StatusOK, h.view(*p))
}

func (h *CatalogHandler) listAddons(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, snap.Addons())
}

func (h *CatalogHandler) listUpsells(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Catalog.Load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, snap.Upsells())
}

func (h *CatalogHandler) timeSlots(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, domain.TimeSlots)
}
