package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/chat-with-data/internal/api/handler"
	customMiddleware "github.com/Rrens/chat-with-data/internal/api/middleware"
)

// Dependencies are the services the router serves
type Dependencies struct {
	Invoices interface {
		handler.InvoiceLookup
		handler.ReadinessChecker
	}
	Chat handler.ChatAnswerer
	// RateLimiter is optional; POST routes are unlimited when nil
	RateLimiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(customMiddleware.Recovery)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	invoiceHandler := handler.NewInvoiceHandler(deps.Invoices)
	chatHandler := handler.NewChatHandler(deps.Chat)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(deps.Invoices))

	r.Get("/get_invoice_name/{invoice_id}", invoiceHandler.GetName)
	r.Get("/get_invoice_history/{invoice_id}", invoiceHandler.GetHistory)

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
		}

		r.Post("/chat_with_data", chatHandler.ChatWithData)
		r.Post("/greeting", chatHandler.Greeting)
	})

	return r
}
