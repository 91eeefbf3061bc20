package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameroom-go/internal/api/handler"
	"github.com/mcoot/gameroom-go/internal/directory"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/middleware"
	"github.com/mcoot/gameroom-go/internal/storage"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger    *slog.Logger
	Directory *directory.Directory
	Registry  *gametype.Registry
	Storage   storage.Storage
	// Fabric serves websocket upgrades at /ws. It is mounted outside the
	// logging middleware because the upgrade hijacks the connection.
	Fabric http.Handler
}

// NewRouter creates a router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Directory, cfg.Registry)
	historyHandler := handler.NewHistoryHandler(cfg.Storage)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/gametypes", roomHandler.GameTypes).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/history", historyHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/history/{code}", historyHandler.Get).Methods(http.MethodGet)

	r.Handle("/ws", cfg.Fabric)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
