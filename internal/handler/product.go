package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/Sohag00879/tech-haven-server/internal/domain/product"
)

const (
	productPageSize = 6
	topProductLimit = 4
	newProductLimit = 5
)

type productResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
}

type productPageResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	HasMore  bool              `json:"hasMore"`
}

// ListProducts returns the first page of catalog items matching the optional
// keyword filter.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	page, err := h.products.List(r.Context(), keyword, productPageSize)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productPageResponse{
		Products: h.toProductResponses(page.Products),
		Page:     page.Page,
		Pages:    page.Pages,
		HasMore:  page.Page < page.Pages,
	})
}

// GetProduct returns a single catalog item by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

// TopProducts returns the highest-rated catalog items.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Top(r.Context(), topProductLimit)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

// NewProducts returns the most recently added catalog items.
func (h *Handler) NewProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Newest(r.Context(), newProductLimit)
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		CountInStock: p.CountInStock,
		Rating:       p.Rating.InexactFloat64(),
		NumReviews:   p.NumReviews,
		Image:        h.imageBaseURL + p.Image,
		CreatedAt:    p.CreatedAt,
	}
}

func (h *Handler) toProductResponses(products []product.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	return out
}
