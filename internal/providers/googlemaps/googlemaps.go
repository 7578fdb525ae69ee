// Package googlemaps talks to the Google Maps web service APIs for place
// autocomplete, place details, directions, reverse geocoding and nearby
// search.
package googlemaps

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/config"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/httpclient"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	statusNotFound    = "NOT_FOUND"
)

var detailFields = strings.Join([]string{
	"place_id", "name", "formatted_address", "vicinity", "geometry",
	"rating", "opening_hours", "photos",
}, ",")

var _ ports.MapsProvider = (*Client)(nil)

type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *httpclient.Client
}

func New(cfg config.Provider, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: "th",
		http: httpclient.New(httpclient.Options{
			Name:        "googlemaps",
			Timeout:     cfg.Timeout,
			MaxAttempts: cfg.MaxAttempts,
			RatePerSec:  cfg.RatePerSec,
			Burst:       cfg.Burst,
		}, logger),
	}
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type placeResult struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Vicinity         string  `json:"vicinity"`
	Rating           float64 `json:"rating"`
	Geometry         struct {
		Location location `json:"location"`
	} `json:"geometry"`
	OpeningHours *struct {
		OpenNow     *bool    `json:"open_now"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

func (p placeResult) rating() *float64 {
	if p.Rating == 0 {
		return nil
	}
	r := p.Rating
	return &r
}

func (p placeResult) openNow() *bool {
	if p.OpeningHours == nil {
		return nil
	}
	return p.OpeningHours.OpenNow
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	q.Set("key", c.apiKey)
	q.Set("language", c.language)
	return c.http.GetJSON(ctx, c.baseURL+path, q, dst)
}

// checkStatus maps a Google status field onto the error taxonomy.
func checkStatus(op, status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults, statusNotFound:
		return fmt.Errorf("%s: %w", op, types.ErrNotFound)
	default:
		if message != "" {
			return fmt.Errorf("%s: %w: %s (%s)", op, types.ErrProviderFailure, status, message)
		}
		return fmt.Errorf("%s: %w: %s", op, types.ErrProviderFailure, status)
	}
}

func latlng(at types.LatLng) string {
	return strconv.FormatFloat(at.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(at.Lng, 'f', -1, 64)
}

func (c *Client) SearchPlaces(ctx context.Context, query string, bias types.LatLng, radiusMeters int) ([]types.PlaceSuggestion, error) {
	q := url.Values{}
	q.Set("input", query)
	q.Set("location", latlng(bias))
	q.Set("radius", strconv.Itoa(radiusMeters))

	var resp struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Predictions  []struct {
			Description string `json:"description"`
			PlaceID     string `json:"place_id"`
		} `json:"predictions"`
	}
	if err := c.get(ctx, "/place/autocomplete/json", q, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus("autocomplete", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	out := make([]types.PlaceSuggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, types.PlaceSuggestion{Description: p.Description, PlaceID: p.PlaceID})
	}
	return out, nil
}

func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (types.PlaceDetails, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)

	var resp struct {
		Status       string      `json:"status"`
		ErrorMessage string      `json:"error_message"`
		Result       placeResult `json:"result"`
	}
	if err := c.get(ctx, "/place/details/json", q, &resp); err != nil {
		return types.PlaceDetails{}, err
	}
	if err := checkStatus("place details", resp.Status, resp.ErrorMessage); err != nil {
		return types.PlaceDetails{}, err
	}

	r := resp.Result
	d := types.PlaceDetails{
		PlaceID:  r.PlaceID,
		Name:     r.Name,
		Address:  r.FormattedAddress,
		Location: types.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Rating:   r.rating(),
		OpenNow:  r.openNow(),
	}
	if d.Address == "" {
		d.Address = r.Vicinity
	}
	if r.OpeningHours != nil {
		d.OpeningHours = r.OpeningHours.WeekdayText
	}
	for _, p := range r.Photos {
		d.Photos = append(d.Photos, p.PhotoReference)
	}
	return d, nil
}

func (c *Client) ComputeRoute(ctx context.Context, origin, destination string, mode ports.TravelMode) (types.Route, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", string(mode))

	var resp struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Routes       []struct {
			Legs []struct {
				Distance struct {
					Text string `json:"text"`
				} `json:"distance"`
				Duration struct {
					Text string `json:"text"`
				} `json:"duration"`
				StartAddress string `json:"start_address"`
				EndAddress   string `json:"end_address"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := c.get(ctx, "/directions/json", q, &resp); err != nil {
		return types.Route{}, err
	}
	if err := checkStatus("directions", resp.Status, resp.ErrorMessage); err != nil {
		return types.Route{}, err
	}
	if len(resp.Routes) == 0 {
		return types.Route{}, fmt.Errorf("directions: %w", types.ErrNotFound)
	}

	route := types.Route{Legs: make([]types.RouteLeg, 0, len(resp.Routes[0].Legs))}
	for _, leg := range resp.Routes[0].Legs {
		route.Legs = append(route.Legs, types.RouteLeg{
			DistanceText: leg.Distance.Text,
			DurationText: leg.Duration.Text,
			StartAddress: leg.StartAddress,
			EndAddress:   leg.EndAddress,
		})
	}
	return route, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, at types.LatLng) (string, error) {
	q := url.Values{}
	q.Set("latlng", latlng(at))

	var resp struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return "", err
	}
	if err := checkStatus("geocode", resp.Status, resp.ErrorMessage); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("geocode: %w", types.ErrNotFound)
	}
	return resp.Results[0].FormattedAddress, nil
}

func (c *Client) NearbySearch(ctx context.Context, kind types.NearbyKind, at types.LatLng, radiusMeters int) ([]types.NearbyPlace, error) {
	q := url.Values{}
	q.Set("location", latlng(at))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("type", string(kind))

	var resp struct {
		Status       string        `json:"status"`
		ErrorMessage string        `json:"error_message"`
		Results      []placeResult `json:"results"`
	}
	if err := c.get(ctx, "/place/nearbysearch/json", q, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus("nearby search", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	out := make([]types.NearbyPlace, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, types.NearbyPlace{
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Vicinity: r.Vicinity,
			Location: types.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:   r.rating(),
			OpenNow:  r.openNow(),
		})
	}
	return out, nil
}
