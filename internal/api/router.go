package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jchavez-2023107/api-ventas/internal/auth"
	"github.com/jchavez-2023107/api-ventas/internal/models"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	authenticated := h.tokens.Authenticate
	adminOnly := auth.RequireRoles(models.RoleAdmin)
	clientOnly := auth.RequireRoles(models.RoleClient)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authenticated)

				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
				r.Delete("/profile", h.DeleteProfile)
				r.Put("/profile/password", h.UpdatePassword)

				r.With(clientOnly).Get("/invoices", h.ListMyInvoices)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", h.CreateUser)
					r.Get("/", h.ListUsers)
					r.Get("/{id}", h.GetUser)
					r.Put("/{id}", h.UpdateUser)
					r.Delete("/{id}", h.DeleteUser)
				})
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}", h.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/", h.CreateCategory)
				r.Put("/{id}", h.UpdateCategory)
				r.Delete("/{id}", h.DeleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/out-of-stock", h.ListOutOfStockProducts)
			r.Get("/top-selling", h.ListTopSellingProducts)
			r.Get("/{id}", h.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, adminOnly)
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.GetCart)
			r.Post("/", h.AddCartItem)
			r.Put("/", h.UpdateCartItem)
			r.Delete("/", h.RemoveCartItem)
			r.Delete("/clear", h.ClearCart)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(authenticated)
			r.With(clientOnly).Post("/", h.CreateInvoice)
			r.With(adminOnly).Get("/", h.ListInvoices)
			r.Get("/{id}", h.GetInvoice)
			r.With(adminOnly).Put("/{id}", h.UpdateInvoiceStatus)
		})

		r.With(authenticated, adminOnly).Get("/audit", h.ListAuditLogs)
	})

	return r
}
