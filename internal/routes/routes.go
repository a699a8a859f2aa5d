package routes

import (
	"net/http"

	_ "github.com/GiorgiUbiria/ewallet/docs"
	"github.com/GiorgiUbiria/ewallet/internal/handlers"
	appmw "github.com/GiorgiUbiria/ewallet/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRoutes(h *handlers.Handler, tokens appmw.TokenParser) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Metrics)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(appmw.Authenticated(tokens))

			r.Get("/auth/me", h.Me)
			r.Post("/auth/change-password", h.ChangePassword)
			r.Put("/users/change-password", h.ChangePassword)
			r.Put("/users/profile", h.UpdateProfile)

			r.Post("/transactions", h.Transfer)
			r.Get("/transactions/my", h.MyTransactions)
			r.Post("/transactions/request", h.CreateRequest)

			r.Post("/requests", h.CreateRequest)
			r.Get("/requests/my", h.MyRequests)
			r.Get("/requests/outgoing", h.OutgoingRequests)
			r.Post("/requests/{id}/accept", h.AcceptRequest)
			r.Post("/requests/{id}/reject", h.RejectRequest)

			r.Get("/credit-score/my", h.MyCreditScore)

			r.Post("/admin/update-default-balance", h.UpdateDefaultBalance)
		})
	})

	return r
}
