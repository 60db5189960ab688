package router

import (
	"net/http"
	"time"

	"backoffice/internal/auth"
	recordHandler "backoffice/internal/record"
	"backoffice/internal/record/repository"
	"backoffice/internal/record/service"
	"backoffice/middleware"
	"backoffice/pkg/response"
	"backoffice/socket"
	"backoffice/store"
)

// TokenTTL is the lifetime of signed login tokens.
const TokenTTL = 24 * time.Hour

type Options struct {
	// JWTSecret enables signed login tokens and bearer checks on the API.
	JWTSecret string
	// StaticDir holds a built frontend bundle; empty or missing disables it.
	StaticDir string
}

func Setup(st *store.Store, hub *socket.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()

	// Auth
	var authenticator auth.Authenticator = auth.DemoAuthenticator{}
	if opts.JWTSecret != "" {
		authenticator = auth.NewJWTAuthenticator([]byte(opts.JWTSecret), TokenTTL)
	}
	authH := auth.NewHandler(authenticator)
	mux.HandleFunc("POST /api/login", authH.Login)

	// Records
	recordService := service.NewRecordService(hub,
		repository.NewRecordRepository(st, store.Users),
		repository.NewRecordRepository(st, store.Tables),
		repository.NewRecordRepository(st, store.Audit, repository.WithServerTimestamp()),
	)
	records := recordHandler.NewRecordHandler(recordService)

	mux.HandleFunc("GET /api/users", records.List(store.Users))
	mux.HandleFunc("POST /api/users", records.Create(store.Users))
	mux.HandleFunc("DELETE /api/users/{id}", records.Delete(store.Users))
	mux.HandleFunc("GET /api/tables", records.List(store.Tables))
	mux.HandleFunc("POST /api/tables", records.Create(store.Tables))
	mux.HandleFunc("DELETE /api/tables/{id}", records.Delete(store.Tables))
	mux.HandleFunc("GET /api/audit", records.List(store.Audit))
	mux.HandleFunc("POST /api/audit", records.Create(store.Audit))

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket change feed
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	mux.Handle("/", NewSPAHandler(opts.StaticDir))

	var h http.Handler = mux
	if opts.JWTSecret != "" {
		h = middleware.AuthMiddleware([]byte(opts.JWTSecret), "/api/login", "/api/health")(h)
	}
	return middleware.CORSMiddleware(middleware.LoggingMiddleware(h))
}
