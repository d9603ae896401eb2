package crmclient

import (
	"context"
	"net/http"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
)

type purchaseLineBody struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type createPurchaseBody struct {
	AccountID string             `json:"account_id"`
	Lines     []purchaseLineBody `json:"lines"`
}

// CreatePurchase books the cart snapshot and returns the purchase id. Only item ids
// and quantities are sent; the API prices the lines itself.
func (c *Client) CreatePurchase(ctx context.Context, req purchasetool.PurchaseRequest) (string, error) {
	body := createPurchaseBody{
		AccountID: req.AccountID,
		Lines:     make([]purchaseLineBody, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		body.Lines = append(body.Lines, purchaseLineBody{ItemID: line.ItemID, Quantity: line.Quantity})
	}

	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{idempotencyHeader: req.IdempotencyKey}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, apiPath("purchases"), nil, body, headers, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}
