// Package booking searches hotels through the booking-com15 RapidAPI host.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/config"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/httpclient"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ ports.HotelProvider = (*Client)(nil)

type Client struct {
	baseURL string
	http    *httpclient.Client
}

func New(cfg config.Provider, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.New(httpclient.RapidAPIOptions("booking", cfg), logger),
	}
}

type destination struct {
	DestID   string `json:"dest_id"`
	DestType string `json:"dest_type"`
	Name     string `json:"name"`
	CityName string `json:"city_name"`
	Country  string `json:"country"`
	ImageURL string `json:"image_url"`
}

func (c *Client) SearchDestinations(ctx context.Context, query string) ([]types.HotelDestination, error) {
	var resp struct {
		Status  bool          `json:"status"`
		Message any           `json:"message"`
		Data    []destination `json:"data"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/searchDestination", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || len(resp.Data) == 0 {
		return nil, fmt.Errorf("no destination for %q: %w", query, types.ErrNotFound)
	}

	out := make([]types.HotelDestination, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, types.HotelDestination{
			ID:           d.DestID,
			Name:         d.Name,
			City:         d.CityName,
			Country:      d.Country,
			ThumbnailURL: d.ImageURL,
			DestType:     d.DestType,
		})
	}
	return out, nil
}

type amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type detailsResponse struct {
	Status bool `json:"status"`
	Data   struct {
		HotelID         json.Number `json:"hotel_id"`
		HotelName       string      `json:"hotel_name"`
		Address         string      `json:"address"`
		City            string      `json:"city"`
		CountryCode     string      `json:"countrycode"`
		FacilitiesBlock struct {
			Facilities []struct {
				Name string `json:"name"`
			} `json:"facilities"`
		} `json:"facilities_block"`
		Rooms map[string]struct {
			Description string `json:"description"`
			Photos      []struct {
				URLMax300   string `json:"url_max300"`
				URLOriginal string `json:"url_original"`
			} `json:"photos"`
		} `json:"rooms"`
		Block []struct {
			RoomName            string `json:"room_name"`
			GrossAmountPerNight amount `json:"gross_amount_per_night"`
			AllInclusiveAmount  amount `json:"all_inclusive_amount"`
		} `json:"block"`
	} `json:"data"`
}

func (c *Client) GetDetails(ctx context.Context, q types.HotelQuery) (types.HotelDetails, error) {
	params := url.Values{}
	params.Set("hotel_id", q.ID)
	params.Set("adults", strconv.Itoa(max(q.Adults, 1)))
	params.Set("room_qty", "1")
	params.Set("units", "metric")
	params.Set("temperature_unit", "c")
	params.Set("languagecode", "en-us")
	params.Set("currency_code", "THB")
	if !q.CheckIn.IsZero() {
		params.Set("arrival_date", q.CheckIn.String())
	}
	if !q.CheckOut.IsZero() {
		params.Set("departure_date", q.CheckOut.String())
	}

	var resp detailsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/getHotelDetails", params, &resp); err != nil {
		return types.HotelDetails{}, err
	}
	if !resp.Status || resp.Data.HotelName == "" {
		return types.HotelDetails{}, fmt.Errorf("hotel %s: %w", q.ID, types.ErrNotFound)
	}

	d := resp.Data
	details := types.HotelDetails{
		ID:         d.HotelID.String(),
		Name:       d.HotelName,
		Address:    joinNonEmpty(d.Address, d.City, d.CountryCode),
		City:       d.City,
		Facilities: make([]string, 0, len(d.FacilitiesBlock.Facilities)),
		Rooms:      make([]types.HotelRoom, 0, len(d.Rooms)),
	}
	for _, f := range d.FacilitiesBlock.Facilities {
		details.Facilities = append(details.Facilities, f.Name)
	}

	// Room ids are map keys; sort them so "first room" is stable.
	roomIDs := make([]string, 0, len(d.Rooms))
	for id := range d.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)
	for _, id := range roomIDs {
		r := d.Rooms[id]
		room := types.HotelRoom{Description: r.Description, Photos: make([]string, 0, len(r.Photos))}
		for _, p := range r.Photos {
			if p.URLMax300 != "" {
				room.Photos = append(room.Photos, p.URLMax300)
			} else if p.URLOriginal != "" {
				room.Photos = append(room.Photos, p.URLOriginal)
			}
		}
		details.Rooms = append(details.Rooms, room)
	}

	if len(d.Block) > 0 && d.Block[0].GrossAmountPerNight.Value > 0 {
		price := d.Block[0].GrossAmountPerNight.Value
		details.NightlyPrice = &price
		details.Currency = d.Block[0].GrossAmountPerNight.Currency
	}
	return details, nil
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
