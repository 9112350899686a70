package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/pantrypal/pantrypal-api/env"
	"github.com/pantrypal/pantrypal-api/types"
)

// Client is a thin HTTP client for the maps proxy server, which
// fronts the upstream geocoding/places/directions APIs
type Client struct {
	baseURL string
	client  *http.Client
}

// GeocodeResult is a single candidate in a geocoding response
type GeocodeResult struct {
	FormattedAddress string                 `json:"formatted_address"`
	Geometry         types.FoodBankGeometry `json:"geometry"`
}

// GeocodeResponse is the proxy's passthrough of the upstream
// geocoding JSON
type GeocodeResponse struct {
	Status       string          `json:"status"`
	Results      []GeocodeResult `json:"results"`
	ErrorMessage string          `json:"error_message"`
}

// FoodBankResult is a single raw place in a food bank search response
type FoodBankResult struct {
	PlaceID  string                 `json:"place_id"`
	Name     string                 `json:"name"`
	Vicinity string                 `json:"vicinity"`
	Geometry types.FoodBankGeometry `json:"geometry"`
}

// FoodBankSearchResponse is the proxy's food bank search payload
type FoodBankSearchResponse struct {
	Status  string           `json:"status"`
	Results []FoodBankResult `json:"results"`
}

// DirectionsStep is a single turn-by-turn instruction
type DirectionsStep struct {
	Instruction string `json:"instruction"`
	Distance    int    `json:"distance"`
	Duration    int    `json:"duration"`
}

// DirectionsRoute is the single route returned by the proxy
type DirectionsRoute struct {
	Distance int              `json:"distance"`
	Duration int              `json:"duration"`
	ETA      string           `json:"eta"`
	Steps    []DirectionsStep `json:"steps"`
}

// DirectionsResponse is the proxy's directions payload
type DirectionsResponse struct {
	Route DirectionsRoute `json:"route"`
}

// NewClient creates a new proxy client and loads values in
// from the environment
func NewClient() (*Client, error) {
	baseURL, err := env.GetEnv("maps proxy base URL", "MAPS_PROXY_URL")
	if err != nil {
		return nil, err
	}

	timeout, err := env.GetDurationEnv("maps proxy request timeout", "MAPS_PROXY_TIMEOUT")
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Geocode resolves a free-text address to the upstream geocoding JSON
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	endpoint := fmt.Sprintf("%s/api/geocode?address=%s",
		c.baseURL, url.QueryEscape(address))

	var response GeocodeResponse
	err := c.getJSON(ctx, endpoint, &response)
	if err != nil {
		return nil, errors.Wrap(err, "could not geocode address")
	}

	return &response, nil
}

// FoodBanks queries the food bank search endpoint around the
// given coordinates
func (c *Client) FoodBanks(ctx context.Context, lat float64, lng float64) (*FoodBankSearchResponse, error) {
	endpoint := fmt.Sprintf("%s/api/foodbanks?lat=%f&lng=%f",
		c.baseURL, lat, lng)

	var response FoodBankSearchResponse
	err := c.getJSON(ctx, endpoint, &response)
	if err != nil {
		return nil, errors.Wrap(err, "could not search food banks")
	}

	return &response, nil
}

// Directions fetches a driving route between the two coordinate pairs
func (c *Client) Directions(ctx context.Context, start types.GeoCoordinates, end types.GeoCoordinates) (*DirectionsResponse, error) {
	endpoint := fmt.Sprintf("%s/api/directions?startLat=%f&startLng=%f&endLat=%f&endLng=%f",
		c.baseURL, start.Lat, start.Lng, end.Lat, end.Lng)

	var response DirectionsResponse
	err := c.getJSON(ctx, endpoint, &response)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch directions")
	}

	return &response, nil
}

// StaticMap fetches the rendered static map PNG for the
// given coordinates
func (c *Client) StaticMap(ctx context.Context, lat float64, lng float64) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/api/staticmap?lat=%f&lng=%f",
		c.baseURL, lat, lng)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch static map")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("static map request failed with status %d", response.StatusCode)
	}

	return ioutil.ReadAll(response.Body)
}

// StaticMapURL builds the proxy URL that serves the static map image
// for the given coordinates, suitable for handing to clients directly
func (c *Client) StaticMapURL(lat float64, lng float64) string {
	return fmt.Sprintf("%s/api/staticmap?lat=%f&lng=%f", c.baseURL, lat, lng)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("request to '%s' failed with status %d", endpoint, response.StatusCode)
	}

	return json.NewDecoder(response.Body).Decode(target)
}
