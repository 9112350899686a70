package pickup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/maps"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for the
// pickup location flow, at the root level
func Routes(resolver *maps.Resolver, client *maps.Client) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/foodbanks", GetFoodBanks(resolver))
	router.Get("/directions", GetDirections(resolver, client))
	router.Get("/staticmap", GetStaticMap(client))
	return router
}

// parseCoordinateParams reads a lat/lng pair from the querystring,
// returning nil when either half is absent
func parseCoordinateParams(r *http.Request, latParam string, lngParam string) (*types.GeoCoordinates, error) {
	latValue := r.URL.Query().Get(latParam)
	lngValue := r.URL.Query().Get(lngParam)
	if latValue == "" || lngValue == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latValue, 64)
	if err != nil {
		return nil, errors.New("the " + latParam + " parameter is not a number")
	}

	lng, err := strconv.ParseFloat(lngValue, 64)
	if err != nil {
		return nil, errors.New("the " + lngParam + " parameter is not a number")
	}

	return &types.GeoCoordinates{Lat: lat, Lng: lng}, nil
}

// GetFoodBanks resolves the user's preferred pickup search origin and
// returns the nearby food banks. When the device's current position is
// supplied via currentLat/currentLng, each result is annotated with
// its distance in miles from that position
func GetFoodBanks(resolver *maps.Resolver) http.HandlerFunc {
	// Use a closure to inject the resolver
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())

		search, err := resolver.ResolvePreferredLocation(r.Context(), session)
		if err != nil {
			util.Error(w, err)
			return
		}

		current, err := parseCoordinateParams(r, "currentLat", "currentLng")
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		if current == nil {
			// Fall back to the configured device locator, which may
			// legitimately have nothing to report
			if resolved, locErr := resolver.ResolveCurrentLocation(r.Context()); locErr == nil {
				current = &resolved
			}
		}

		foodBanks, err := resolver.SearchNearbyFoodBanks(r.Context(), search, current)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"food_banks": foodBanks,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetDirections returns turn-by-turn directions from the supplied
// start position (or the resolved preferred location when omitted) to
// the given destination
func GetDirections(resolver *maps.Resolver, client *maps.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		end, err := parseCoordinateParams(r, "endLat", "endLng")
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}
		if end == nil {
			util.ErrorWithCode(w, errors.New("the endLat and endLng parameters are required"),
				http.StatusBadRequest)
			return
		}

		start, err := parseCoordinateParams(r, "startLat", "startLng")
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}
		if start == nil {
			session := auth.SessionFromContext(r.Context())
			resolved, err := resolver.ResolvePreferredLocation(r.Context(), session)
			if err != nil {
				util.Error(w, err)
				return
			}
			start = &resolved
		}

		directions, err := client.Directions(r.Context(), *start, *end)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadGateway)
			return
		}

		jsonResponse, err := json.Marshal(directions)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetStaticMap streams a rendered map image centered on the given
// coordinates
func GetStaticMap(client *maps.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		center, err := parseCoordinateParams(r, "lat", "lng")
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}
		if center == nil {
			util.ErrorWithCode(w, errors.New("the lat and lng parameters are required"),
				http.StatusBadRequest)
			return
		}

		image, err := client.StaticMap(r.Context(), center.Lat, center.Lng)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(image)
	}
}
