package crmclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
	"github.com/shopspring/decimal"
)

type itemPayload struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Family      string          `json:"family"`
	ImageURL    *string         `json:"image_url"`
}

func (p itemPayload) toItem() purchasetool.Item {
	return purchasetool.Item{
		ID:          p.ID,
		Name:        p.Name,
		Description: deref(p.Description),
		Price:       p.Price,
		Type:        p.Type,
		Family:      p.Family,
		ImageURL:    deref(p.ImageURL),
	}
}

// ListItems fetches the items matching the filters. Empty filters are omitted.
func (c *Client) ListItems(ctx context.Context, filters purchasetool.FilterState) ([]purchasetool.Item, error) {
	query := url.Values{}
	setIfNotBlank(query, "type", filters.Type)
	setIfNotBlank(query, "family", filters.Family)
	setIfNotBlank(query, "search", filters.Search)

	var payload []itemPayload
	if err := c.do(ctx, http.MethodGet, apiPath("items"), query, nil, nil, &payload); err != nil {
		return nil, err
	}
	items := make([]purchasetool.Item, 0, len(payload))
	for _, p := range payload {
		items = append(items, p.toItem())
	}
	return items, nil
}

// FilterValues fetches the distinct item types and families.
func (c *Client) FilterValues(ctx context.Context) (purchasetool.FilterValues, error) {
	var payload struct {
		Types    []string `json:"types"`
		Families []string `json:"families"`
	}
	if err := c.do(ctx, http.MethodGet, apiPath("items", "filter-options"), nil, nil, nil, &payload); err != nil {
		return purchasetool.FilterValues{}, err
	}
	return purchasetool.FilterValues{Types: payload.Types, Families: payload.Families}, nil
}

// AttachImage stores imageURL on the item.
func (c *Client) AttachImage(ctx context.Context, itemID, imageURL string) error {
	body := map[string]string{"image_url": imageURL}
	return c.do(ctx, http.MethodPut, apiPath("items", itemID, "image"), nil, body, nil, nil)
}

// FindImageURL asks the API for a representative image. "" means none was found.
func (c *Client) FindImageURL(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)

	var payload struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.do(ctx, http.MethodGet, apiPath("images", "search"), params, nil, nil, &payload); err != nil {
		return "", err
	}
	return payload.ImageURL, nil
}

func setIfNotBlank(values url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		values.Set(key, value)
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
