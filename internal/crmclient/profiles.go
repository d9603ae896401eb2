package crmclient

import (
	"context"
	"net/http"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
)

// UserProfile loads the user identified by the bearer token.
func (c *Client) UserProfile(ctx context.Context) (purchasetool.UserProfile, error) {
	var payload struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		IsManager bool   `json:"is_manager"`
	}
	if err := c.do(ctx, http.MethodGet, apiPath("users", "me"), nil, nil, nil, &payload); err != nil {
		return purchasetool.UserProfile{}, err
	}
	return purchasetool.UserProfile{ID: payload.ID, Name: payload.Name, IsManager: payload.IsManager}, nil
}

// AccountProfile loads the display fields of an account.
func (c *Client) AccountProfile(ctx context.Context, accountID string) (purchasetool.AccountProfile, error) {
	var payload struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		AccountNumber *string `json:"account_number"`
		Industry      *string `json:"industry"`
	}
	if err := c.do(ctx, http.MethodGet, apiPath("accounts", accountID), nil, nil, nil, &payload); err != nil {
		return purchasetool.AccountProfile{}, err
	}
	return purchasetool.AccountProfile{
		ID:            payload.ID,
		Name:          payload.Name,
		AccountNumber: deref(payload.AccountNumber),
		Industry:      deref(payload.Industry),
	}, nil
}
