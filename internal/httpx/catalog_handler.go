package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kickslab/shoestore/internal/catalog"
)

// CatalogHandler exposes the public browse side of the catalog. Writes
// stay with the admin tooling.
type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/shoes", h.listShoes)
	r.Get("/shoes/{id}", h.getShoe)
}

func (h *CatalogHandler) listShoes(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		CategoryID:    r.URL.Query().Get("category_id"),
		MinPriceCents: atoiOrZero(r.URL.Query().Get("min_price")),
		MaxPriceCents: atoiOrZero(r.URL.Query().Get("max_price")),
	}
	shoes, err := h.Repo.List(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shoes)
}

func (h *CatalogHandler) getShoe(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Shoe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
