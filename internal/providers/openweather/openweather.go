// Package openweather reads the five day forecast from the open-weather13
// RapidAPI host.
package openweather

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

// readingsPerDay is the number of 3-hourly entries the API returns per day.
const readingsPerDay = 8

var _ ports.WeatherProvider = (*Client)(nil)

type Client struct {
	baseURL string
	http    *httpclient.Client
}

func New(cfg config.Provider, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.New(httpclient.RapidAPIOptions("openweather", cfg), logger),
	}
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// DailyForecast returns one reading per day, taking every eighth 3-hourly
// entry from the first one.
func (c *Client) DailyForecast(ctx context.Context, at types.LatLng) ([]types.ForecastPoint, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	q.Set("lang", "EN")

	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/fivedaysforcast", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.List) == 0 {
		return nil, fmt.Errorf("%w: forecast list is empty", types.ErrParseFailure)
	}

	points := make([]types.ForecastPoint, 0, len(resp.List)/readingsPerDay+1)
	for i := 0; i < len(resp.List); i += readingsPerDay {
		e := resp.List[i]
		p := types.ForecastPoint{
			Unix:        e.Dt,
			TempKelvin:  e.Main.Temp,
			FeelsKelvin: e.Main.FeelsLike,
			Humidity:    e.Main.Humidity,
			WindMS:      e.Wind.Speed,
		}
		if len(e.Weather) > 0 {
			p.Main = e.Weather[0].Main
			p.Description = e.Weather[0].Description
			p.Icon = e.Weather[0].Icon
		}
		points = append(points, p)
	}
	return points, nil
}
