package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"

	"github.com/pantrypal/pantrypal-api/env"
)

// Server is the maps proxy that shields the mobile clients from the
// upstream map providers: it holds the provider API keys, normalizes
// their response shapes, and serves mock food bank results
type Server struct {
	logger       zerolog.Logger
	client       *http.Client
	placesAPIKey string
	mapboxToken  string
}

// NewServer loads the upstream provider credentials from the
// environment
func NewServer(logger zerolog.Logger) (*Server, error) {
	placesAPIKey, err := env.GetEnv("Google Places API key", "GOOGLE_PLACES_API_KEY")
	if err != nil {
		return nil, err
	}

	mapboxToken, err := env.GetEnv("Mapbox access token", "MAPBOX_TOKEN")
	if err != nil {
		return nil, err
	}

	return &Server{
		logger: logger,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		placesAPIKey: placesAPIKey,
		mapboxToken:  mapboxToken,
	}, nil
}

// Serve runs the proxy server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (s *Server) Serve(ctx context.Context, port int) {
	router := s.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg("listen failed")
		}
	}()
	s.logger.Info().Int("port", port).Msg("maps proxy started")

	<-ctx.Done()
	s.logger.Info().Msg("maps proxy stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Fatal().Err(err).Msg("maps proxy shutdown failed")
	}
	s.logger.Info().Msg("maps proxy exited properly")
}

func (s *Server) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                   // Recover from panics without crashing the server
		chizerolog.LoggerMiddleware(&s.logger), // Log API request calls
		middleware.RedirectSlashes,             // Redirect slashes to no slash URL versions
		middleware.NoCache,                     // Prevent clients from caching the results
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
	)

	router.Get("/health", s.Health())
	router.Route("/api", func(r chi.Router) {
		r.Get("/geocode", s.Geocode())
		r.Get("/foodbanks", s.FoodBanks())
		r.Get("/staticmap", s.StaticMap())
		r.Get("/directions", s.Directions())
	})

	return router
}

// Health reports the proxy's liveness
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
		})
	}
}

// respondError sends the proxy's error shape, a JSON object with a
// single top-level error string
func respondError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	jsonResponse, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonResponse)
}
