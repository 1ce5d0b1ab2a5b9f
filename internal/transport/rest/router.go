package rest

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	_ "hornethelper/docs"
	"hornethelper/internal/metrics"
	"hornethelper/internal/service"
	"hornethelper/internal/transport/rest/handler"
	"hornethelper/internal/transport/rest/middleware"
	"hornethelper/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService           *service.AuthService
	UserService           *service.UserService
	SessionService        *service.SessionService
	CalendarService       *service.CalendarService
	ChatService           *service.ChatService
	RecommendationService *service.RecommendationService
	WSHub                 *ws.Hub
	Logger                *slog.Logger
	// AllowedOrigins is a comma separated CORS allow list; "*" allows any origin
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.UserService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	chatHandler := handler.NewChatHandler(c.ChatService)
	calendarHandler := handler.NewCalendarHandler(c.CalendarService)
	aiHandler := handler.NewAIHandler(c.RecommendationService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.ChatService, c.AllowedOrigins)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(logger))
	r.Use(metrics.Middleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog/majors", handler.Majors).Methods("GET", "OPTIONS")
	v1.HandleFunc("/catalog/locations", handler.Locations).Methods("GET", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/sessions/{kind}", wsHandler.SessionsWS).Methods("GET")
	v1.HandleFunc("/ws/sessions/{kind}/{id}/chat", wsHandler.ChatWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"swagger doc unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// User routes (require user auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/me", authHandler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/me/major", authHandler.UpdateMajor).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/calendar", calendarHandler.Get).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/sessions/{kind}", sessionHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}", sessionHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}", sessionHandler.Disband).Methods("DELETE", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}/leave", sessionHandler.Leave).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}/messages", chatHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}/messages", chatHandler.Post).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{kind}/{id}/assistant", chatHandler.Assistant).Methods("POST", "OPTIONS")

	userRoutes.HandleFunc("/ai/ask", aiHandler.Ask).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/ai/videos", aiHandler.Videos).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	allowed := map[string]bool{}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	if len(allowed) == 0 {
		allowed["*"] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowed["*"]:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
