package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/triviatastic/triviatastic/pkg/api/handlers"
	"github.com/triviatastic/triviatastic/pkg/log"
	"github.com/triviatastic/triviatastic/pkg/repositories"
)

// BlobServer is the remote state store: a plain PUT/GET blob service
// addressed by string key. It offers no versioning and no transactions;
// the last successful write to a key wins.
type BlobServer struct {
	server *http.Server
}

type NewBlobServerOptions struct {
	Port       int
	Repository repositories.Repository
}

// NewBlobServer creates a new http.Server for handling state requests.
func NewBlobServer(opts NewBlobServerOptions) *BlobServer {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.HandleFunc("/state/{key}", handlers.HandleGetState(opts.Repository)).Methods(http.MethodGet)
	router.HandleFunc("/state/{key}", handlers.HandlePutState(opts.Repository)).Methods(http.MethodPut)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return &BlobServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", opts.Port),
			Handler: router,
		},
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *BlobServer) Start() error {
	log.Info("Blob server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start blob server: %v", err)
	}
	return nil
}

func (s *BlobServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
