package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"

	apiAuth "github.com/pantrypal/pantrypal-api/api/auth"
	apiGroups "github.com/pantrypal/pantrypal-api/api/groups"
	"github.com/pantrypal/pantrypal-api/api/ingredients"
	"github.com/pantrypal/pantrypal-api/api/lists"
	apiOnboarding "github.com/pantrypal/pantrypal-api/api/onboarding"
	apiPickup "github.com/pantrypal/pantrypal-api/api/pickup"
	apiPreferences "github.com/pantrypal/pantrypal-api/api/preferences"
	"github.com/pantrypal/pantrypal-api/api/uploads"
	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/catalog"
	"github.com/pantrypal/pantrypal-api/db/mongo"
	"github.com/pantrypal/pantrypal-api/env"
	"github.com/pantrypal/pantrypal-api/groups"
	"github.com/pantrypal/pantrypal-api/list"
	"github.com/pantrypal/pantrypal-api/maps"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/upload/s3"
)

// APIServer is a struct that bundles together the various server-wide
// resources used at runtime that each have
// a lifecycle of initialization, connection, and disconnection
type APIServer struct {
	logger          zerolog.Logger
	dbProvider      *mongo.Provider
	catalogProvider *catalog.Provider
	mapsClient      *maps.Client
	resolver        *maps.Resolver
	jwtManager      *auth.JWTManager
	uploadProvider  *s3.Provider
	groupService    *groups.Service
	groceryStores   *lists.Stores
	wishlistStores  *lists.Stores
	wizards         *apiOnboarding.Wizards
}

// NewAPIServer initializes the struct and all constituent components
func NewAPIServer(logger zerolog.Logger) (*APIServer, error) {
	// Initialize the MongoDB handler
	dbProvider, err := mongo.NewProvider()
	if err != nil {
		return nil, err
	}

	// Initialize the ingredient catalog cache
	catalogProvider, err := catalog.NewProvider(dbProvider)
	if err != nil {
		return nil, err
	}

	// Initialize the maps proxy client
	mapsClient, err := maps.NewClient()
	if err != nil {
		return nil, err
	}

	// Initialize the JWT manager
	jwtManager, err := auth.NewJWTManager()
	if err != nil {
		return nil, err
	}

	// Initialize the S3 uploader
	uploadProvider, err := s3.NewProvider()
	if err != nil {
		return nil, err
	}

	resolver := maps.NewResolver(dbProvider, mapsClient, locatorFromEnv())
	groupService := groups.NewService(dbProvider, dbProvider)

	return &APIServer{
		logger:          logger,
		dbProvider:      dbProvider,
		catalogProvider: catalogProvider,
		mapsClient:      mapsClient,
		resolver:        resolver,
		jwtManager:      jwtManager,
		uploadProvider:  uploadProvider,
		groupService:    groupService,
		groceryStores: lists.NewStores(func() *list.Store {
			return list.NewGroceryStore(dbProvider)
		}),
		wishlistStores: lists.NewStores(func() *list.Store {
			return list.NewWishlistStore(dbProvider)
		}),
		wizards: apiOnboarding.NewWizards(groupService, dbProvider),
	}, nil
}

// locatorFromEnv builds the device locator used to annotate food bank
// search results with distances. Deployments without a fixed position
// get a locator that reports no fix, which the search treats as
// "skip the distance annotation"
func locatorFromEnv() maps.Locator {
	locator := maps.FixedLocator{}

	lat, latErr := env.GetFloatEnv("device latitude", "DEVICE_LAT")
	lng, lngErr := env.GetFloatEnv("device longitude", "DEVICE_LNG")
	if latErr == nil && lngErr == nil {
		locator.Coordinates = types.GeoCoordinates{Lat: lat, Lng: lng}
	}

	return locator
}

// Connect initializes the struct and all constituent components
func (a *APIServer) Connect(ctx context.Context) error {
	// Connect to the MongoDB database
	a.logger.Info().Msg("initializing MongoDB database provider")
	err := a.dbProvider.Connect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not connect to the database")
		return err
	}
	a.logger.Info().Msg("successfully connected to and pinged the database")

	// Warm the ingredient catalog cache and start the refresh goroutine
	a.logger.Info().Msg("initializing ingredient catalog cache")
	err = a.catalogProvider.Connect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not load the ingredient catalog")
		return err
	}
	a.logger.Info().Msg("successfully loaded the ingredient catalog")

	return nil
}

// Disconnect initializes the struct and all constituent components
func (a *APIServer) Disconnect(ctx context.Context) error {
	err := a.catalogProvider.Disconnect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not stop the catalog refresh")
		return err
	}
	a.logger.Info().Msg("stopped the catalog refresh")

	err = a.dbProvider.Disconnect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not disconnect from the database")
		return err
	}
	a.logger.Info().Msg("disconnected from the database")

	return nil
}

// Serve runs the main API server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (a *APIServer) Serve(ctx context.Context, port int) {
	router := a.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("listen failed")
		}
	}()
	a.logger.Info().Int("port", port).Msg("API server started")

	<-ctx.Done()
	a.logger.Info().Msg("API server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Fatal().Err(err).Msg("API server shutdown failed")
	}
	a.logger.Info().Msg("API server exited properly")
}

func (a *APIServer) routes() *chi.Mux {
	// Approach from:
	// https://itnext.io/structuring-a-production-grade-rest-api-in-golang-c0229b3feedc
	// https://itnext.io/how-i-pass-around-shared-resources-databases-configuration-etc-within-golang-projects-b27af4d8e8a
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                          // Recover from panics without crashing the server
		chizerolog.LoggerMiddleware(&a.logger),        // Log API request calls
		middleware.RedirectSlashes,                    // Redirect slashes to no slash URL versions
		render.SetContentType(render.ContentTypeJSON), // Set content-type headers to application/json
		middleware.Compress(5),                        // Compress results, mostly gzipping assets and json
		middleware.NoCache,                            // Prevent clients from caching the results
		a.corsMiddleware(),                            // Create cors middleware from go-chi/cors
	)

	// ==============================
	// Add all routes to the API here
	// ==============================
	router.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			// Can be used for health checks
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(204)
			})

			r.Mount("/auth", apiAuth.Routes(a.jwtManager))
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			// Seek, verify and validate JWT tokens,
			// sending appropriate status codes upon failure.
			// Note that this does not perform *authorization* checks involving perms;
			// if needed, use auth.AdminAuthenticated to use Permissions.AdminAccess
			r.Use(a.jwtManager.Authenticated())

			r.Mount("/ingredients", ingredients.Routes(a.dbProvider, a.catalogProvider.Cache))
			r.Mount("/grocery-list", lists.Routes(a.groceryStores))
			r.Mount("/wishlist", lists.Routes(a.wishlistStores))
			r.Mount("/preferences", apiPreferences.Routes(a.dbProvider))
			r.Mount("/groups", apiGroups.Routes(a.groupService, a.dbProvider))
			r.Mount("/onboarding", apiOnboarding.Routes(a.wizards))
			r.Mount("/pickup", apiPickup.Routes(a.resolver, a.mapsClient))
			r.Mount("/upload", uploads.Routes(a.uploadProvider))
		})
	})

	return router
}

func (a *APIServer) corsMiddleware() func(http.Handler) http.Handler {
	// See if the CORS_ALLOWED_ORIGINS environment variable was set
	allowedOrigins := "*"
	if value, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		allowedOrigins = value
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
