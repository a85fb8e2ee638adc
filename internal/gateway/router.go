package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront gateway surface.
func NewRouter(registry *Registry, requestTimeout time.Duration) *chi.Mux {
	cartHandler := &CartHandler{}
	checkoutHandler := &CheckoutHandler{}
	posHandler := &POSHandler{}
	authHandler := NewAuthHandler(registry)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware(registry))
	r.Use(AdminGuard)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Put("/items/{item_id}", cartHandler.UpdateItem)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", checkoutHandler.InitiatePayment)
			r.Post("/wait", checkoutHandler.AwaitPayment)
			r.Get("/{payment_id}", checkoutHandler.PaymentStatus)
		})

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", posHandler.ListSales)
			r.Post("/", posHandler.CreateSale)
			r.Delete("/{sale_id}", posHandler.CancelSale)
			r.Get("/stats", posHandler.Stats)
			r.Get("/chart-data", posHandler.ChartData)
		})
	})

	return r
}
