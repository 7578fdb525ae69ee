// Package lazada searches products on the Thai Lazada site through the
// lazada-api RapidAPI host.
package lazada

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

const site = "th"

var _ ports.ProductProvider = (*Client)(nil)

type Client struct {
	baseURL string
	http    *httpclient.Client
}

func New(cfg config.Provider, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.New(httpclient.RapidAPIOptions("lazada", cfg), logger),
	}
}

type item struct {
	ItemID     string `json:"item_id"`
	ProductURL string `json:"product_url"`
	Title      string `json:"title"`
	Img        string `json:"img"`
	Price      string `json:"price"`
	PriceInfo  struct {
		SalePrice string `json:"sale_price"`
	} `json:"price_info"`
	ReviewInfo struct {
		AverageScore string `json:"average_score"`
		ReviewCount  int    `json:"review_count"`
	} `json:"review_info"`
	ShopInfo struct {
		ShopName string `json:"shop_name"`
	} `json:"shop_info"`
}

type searchResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Items []item `json:"items"`
	} `json:"data"`
}

func (c *Client) SearchProducts(ctx context.Context, keywords string, page int, sort types.ProductSort) ([]types.Product, error) {
	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("site", site)
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("sort", string(sort))

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/lazada/search/items", q, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, fmt.Errorf("lazada search: %w: code %d %s", types.ErrProviderFailure, resp.Code, resp.Msg)
	}

	out := make([]types.Product, 0, len(resp.Data.Items))
	for _, it := range resp.Data.Items {
		p := types.Product{
			ID:         it.ItemID,
			Title:      it.Title,
			Price:      it.PriceInfo.SalePrice,
			ImageURL:   absoluteURL(it.Img),
			ShopName:   it.ShopInfo.ShopName,
			Reviews:    it.ReviewInfo.ReviewCount,
			ProductURL: absoluteURL(it.ProductURL),
		}
		if p.Price == "" {
			p.Price = it.Price
		}
		if score, err := strconv.ParseFloat(it.ReviewInfo.AverageScore, 64); err == nil && score > 0 {
			p.Rating = &score
		}
		out = append(out, p)
	}
	return out, nil
}

// absoluteURL fixes the protocol-relative links Lazada returns.
func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
