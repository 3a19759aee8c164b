package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/cbodonnell/simon/pkg/api/handlers"
	"github.com/cbodonnell/simon/pkg/api/middleware"
	"github.com/cbodonnell/simon/pkg/game/constants"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/network"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server         *http.Server
	networkManager *network.NetworkManager
	tls            *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Addr           string
	TLS            *TLSConfig
	Repository     repositories.Repository
	Game           network.GameController
	NetworkManager *network.NetworkManager
	// Sink receives the led_state echo of presses accepted over HTTP
	Sink           presentation.Sink
	// MetricsHandler is served on /metrics when set
	MetricsHandler http.Handler
	// ControlToken guards the POST endpoints and the websocket upgrade when set
	ControlToken   string
	HighscoreLimit int
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	limit := opts.HighscoreLimit
	if limit <= 0 {
		limit = constants.DefaultHighscoreLimit
	}

	sink := opts.Sink
	if sink == nil {
		sink = presentation.NopSink{}
	}

	router := mux.NewRouter()
	router.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware())

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/highscores", handlers.HandleListHighscores(opts.Repository, limit)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/highscores/{name}", handlers.HandlePlayerHighscores(opts.Repository, limit)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/state", handlers.HandleGetState(opts.Game)).Methods(http.MethodGet, http.MethodOptions)

	control := api.Methods(http.MethodPost, http.MethodOptions).Subrouter()
	control.Use(middleware.NewTokenMiddleware(opts.ControlToken))
	control.HandleFunc("/remote/input", handlers.HandleRemoteInput(opts.Game, sink))
	control.HandleFunc("/difficulty", handlers.HandleChangeDifficulty(opts.Game))
	control.HandleFunc("/name", handlers.HandleSubmitName(opts.Game))

	if opts.NetworkManager != nil {
		requireToken := middleware.NewTokenMiddleware(opts.ControlToken)
		router.Handle("/ws", requireToken(http.HandlerFunc(opts.NetworkManager.HandleWebSocket)))
	}
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	server := &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}
	return &APIServer{
		server:         server,
		networkManager: opts.NetworkManager,
		tls:            opts.TLS,
	}
}

// Handler returns the router serving all endpoints
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the APIServer and blocks until it is stopped
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return err
	}
	return nil
}

// Stop closes websocket observers and shuts the APIServer down
func (s *APIServer) Stop(ctx context.Context) error {
	if s.networkManager != nil {
		s.networkManager.CloseAll()
	}
	return s.server.Shutdown(ctx)
}
