package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger builds the JSON slog logger shared by the router and the
// handlers, with request attributes formatted for log aggregation.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: httplog.SchemaECS.Concise(false).ReplaceAttr,
	}))
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(handler *Handler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/recompute", handler.Recompute)
			r.Get("/record", handler.FindRecord)
			r.Get("/period", handler.PeriodRecords)
			r.Route("/records/{id}", func(r chi.Router) {
				r.Get("/", handler.GetRecord)
				r.Post("/confirm", handler.Confirm)
				r.Post("/pay", handler.MarkPaid)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", handler.CreateEmployee)
			r.Get("/", handler.ListEmployees)
			r.Get("/{id}", handler.GetEmployee)
			r.Get("/{id}/statement", handler.Statement)
		})

		r.Post("/trips/settlements", handler.AddSettlement)
		r.Post("/expenses", handler.AddExpense)
		r.Route("/cash", func(r chi.Router) {
			r.Post("/movements", handler.AddMovement)
			r.Post("/handovers", handler.AddHandover)
			r.Post("/peer-receipts", handler.AddPeerReceipt)
		})
	})

	return r
}
