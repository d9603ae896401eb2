package crmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
	"github.com/angelmondragon/itempurchase/pkg/enums"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/shopspring/decimal"
)

type createItemBody struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Type        string           `json:"type"`
	Family      string           `json:"family"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

// SubmitRecord creates a record of the given type from generic form fields and
// returns its id. Field validation happens server side.
func (c *Client) SubmitRecord(ctx context.Context, objectType enums.RecordType, fields purchasetool.RecordFields) (string, error) {
	switch objectType {
	case enums.RecordTypeItem:
		body, err := newCreateItemBody(fields)
		if err != nil {
			return "", err
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := c.do(ctx, http.MethodPost, apiPath("items"), nil, body, nil, &created); err != nil {
			return "", err
		}
		return created.ID, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported record type %q", objectType))
	}
}

func newCreateItemBody(fields purchasetool.RecordFields) (createItemBody, error) {
	body := createItemBody{
		Name:        fields.Name(),
		Description: optionalString(fields, "description"),
		Type:        stringField(fields, "type"),
		Family:      stringField(fields, "family"),
		ImageURL:    optionalString(fields, "image_url"),
	}
	price, err := priceField(fields["price"])
	if err != nil {
		return createItemBody{}, err
	}
	body.Price = price
	return body, nil
}

func stringField(fields purchasetool.RecordFields, key string) string {
	value, _ := fields[key].(string)
	return strings.TrimSpace(value)
}

func optionalString(fields purchasetool.RecordFields, key string) *string {
	value := stringField(fields, key)
	if value == "" {
		return nil
	}
	return &value
}

func priceField(raw any) (*decimal.Decimal, error) {
	var (
		price decimal.Decimal
		err   error
	)
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		price = v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		price, err = decimal.NewFromString(strings.TrimSpace(v))
	case json.Number:
		price, err = decimal.NewFromString(v.String())
	case float64:
		price = decimal.NewFromFloat(v)
	case int:
		price = decimal.NewFromInt(int64(v))
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported price value %T", raw))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a number")
	}
	return &price, nil
}
