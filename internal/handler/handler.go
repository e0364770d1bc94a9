// Package handler exposes the HTTP surface of the order service: request
// decoding, response shaping, and the mapping of domain errors to status
// codes. Business logic lives in the domain services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sohag00879/tech-haven-server/internal/domain/order"
	"github.com/Sohag00879/tech-haven-server/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses.
	// When empty, paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the /api routes, delegating to the order service and the
// product repository.
type Handler struct {
	products     product.Repository
	orders       *order.Service
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, products product.Repository, orders *order.Service) *Handler {
	return &Handler{
		products:     products,
		orders:       orders,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Router builds the chi router for the full API surface, rooted at /api.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/", h.ListOrders)
			r.Get("/mine/{userId}", h.ListUserOrders)
			r.Get("/total-orders", h.TotalOrders)
			r.Get("/total-sales", h.TotalSales)
			r.Get("/total-sales-by-date", h.TotalSalesByDate)
			r.Get("/time-frame/{timeFrame}", h.OrdersByTimeFrame)
			r.Get("/{id}", h.GetOrder)
			r.Put("/{id}/pay", h.PayOrder)
			r.Put("/{id}/deliver", h.DeliverOrder)
			r.Put("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/top", h.TopProducts)
			r.Get("/new", h.NewProducts)
			r.Get("/{id}", h.GetProduct)
		})
	})

	return r
}
