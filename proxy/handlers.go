package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
const mapboxStaticURL = "https://api.mapbox.com/styles/v1/mapbox/streets-v11/static"

// Geocode passes a free-text address through to the upstream geocoder
// and relays its response body untouched
func (s *Server) Geocode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		if address == "" {
			respondError(w, http.StatusBadRequest, "Address is required")
			return
		}

		query := url.Values{}
		query.Set("address", address)
		query.Set("key", s.placesAPIKey)

		request, err := http.NewRequestWithContext(r.Context(), http.MethodGet,
			googleGeocodeURL+"?"+query.Encode(), nil)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to geocode address")
			return
		}

		response, err := s.client.Do(request)
		if err != nil {
			s.logger.Error().Err(err).Msg("geocoding error")
			respondError(w, http.StatusInternalServerError, "Failed to geocode address")
			return
		}
		defer response.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, response.Body)
	}
}

// StaticMap renders a map image around the given coordinates via the
// upstream tile provider and relays the PNG bytes
func (s *Server) StaticMap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat := r.URL.Query().Get("lat")
		lng := r.URL.Query().Get("lng")
		if lat == "" || lng == "" {
			respondError(w, http.StatusBadRequest, "Latitude and longitude are required")
			return
		}

		// Drop a red pin at the center of a 500x300 render
		upstream := fmt.Sprintf("%s/pin-s+ff0000(%s,%s)/%s,%s,13/500x300?access_token=%s",
			mapboxStaticURL, lng, lat, lng, lat, url.QueryEscape(s.mapboxToken))

		request, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream, nil)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate map")
			return
		}

		response, err := s.client.Do(request)
		if err != nil {
			s.logger.Error().Err(err).Msg("static map error")
			respondError(w, http.StatusInternalServerError, "Failed to generate map")
			return
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			s.logger.Error().Int("status", response.StatusCode).Msg("static map upstream error")
			respondError(w, http.StatusInternalServerError, "Failed to generate map")
			return
		}

		image, err := ioutil.ReadAll(response.Body)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate map")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(image)
	}
}

type googleTextValue struct {
	Value int `json:"value"`
}

type googleStep struct {
	HTMLInstructions string          `json:"html_instructions"`
	Distance         googleTextValue `json:"distance"`
	Duration         googleTextValue `json:"duration"`
}

type googleLeg struct {
	Distance googleTextValue `json:"distance"`
	Duration googleTextValue `json:"duration"`
	Steps    []googleStep    `json:"steps"`
}

type googleRoute struct {
	Legs []googleLeg `json:"legs"`
}

type googleDirectionsResponse struct {
	Status string        `json:"status"`
	Routes []googleRoute `json:"routes"`
}

type directionsStep struct {
	Instruction string `json:"instruction"`
	Distance    int    `json:"distance"`
	Duration    int    `json:"duration"`
}

type directionsRoute struct {
	Distance int              `json:"distance"`
	Duration int              `json:"duration"`
	ETA      string           `json:"eta"`
	Steps    []directionsStep `json:"steps"`
}

// Directions fetches a driving route from the upstream directions
// provider and flattens its first route into the shape the clients
// consume, with plain-text step instructions and an arrival time
func (s *Server) Directions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startLat := r.URL.Query().Get("startLat")
		startLng := r.URL.Query().Get("startLng")
		endLat := r.URL.Query().Get("endLat")
		endLng := r.URL.Query().Get("endLng")
		if startLat == "" || startLng == "" || endLat == "" || endLng == "" {
			respondError(w, http.StatusBadRequest, "Start and end coordinates are required")
			return
		}

		query := url.Values{}
		query.Set("origin", fmt.Sprintf("%s,%s", startLat, startLng))
		query.Set("destination", fmt.Sprintf("%s,%s", endLat, endLng))
		query.Set("key", s.placesAPIKey)

		request, err := http.NewRequestWithContext(r.Context(), http.MethodGet,
			googleDirectionsURL+"?"+query.Encode(), nil)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch directions")
			return
		}

		response, err := s.client.Do(request)
		if err != nil {
			s.logger.Error().Err(err).Msg("directions error")
			respondError(w, http.StatusInternalServerError, "Failed to fetch directions")
			return
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			s.logger.Error().Int("status", response.StatusCode).Msg("directions upstream error")
			respondError(w, http.StatusInternalServerError, "Failed to fetch directions")
			return
		}

		var upstream googleDirectionsResponse
		err = json.NewDecoder(response.Body).Decode(&upstream)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch directions")
			return
		}

		if upstream.Status != "OK" || len(upstream.Routes) == 0 || len(upstream.Routes[0].Legs) == 0 {
			respondError(w, http.StatusBadRequest, "No route found")
			return
		}

		leg := upstream.Routes[0].Legs[0]
		arrival := time.Now().Add(time.Duration(leg.Duration.Value) * time.Second)

		steps := make([]directionsStep, 0, len(leg.Steps))
		for _, step := range leg.Steps {
			steps = append(steps, directionsStep{
				Instruction: stripHTML(step.HTMLInstructions),
				Distance:    step.Distance.Value,
				Duration:    step.Duration.Value,
			})
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"route": directionsRoute{
				Distance: leg.Distance.Value,
				Duration: leg.Duration.Value,
				ETA:      arrival.Format("3:04 PM"),
				Steps:    steps,
			},
		})
	}
}

// stripHTML flattens the upstream's HTML-formatted step instructions
// into plain text. The input is returned untouched if it fails to
// parse as HTML
func stripHTML(instructions string) string {
	document, err := htmlquery.Parse(strings.NewReader(instructions))
	if err != nil {
		return instructions
	}

	return htmlquery.InnerText(document)
}
