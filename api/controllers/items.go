package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/itempurchase/api/responses"
	"github.com/angelmondragon/itempurchase/api/validators"
	"github.com/angelmondragon/itempurchase/internal/items"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
)

const filterParamMaxLength = 80

type itemCreateRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Type        string           `json:"type" validate:"required,max=80"`
	Family      string           `json:"family" validate:"required,max=80"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

func (r itemCreateRequest) toInput() (items.CreateItemInput, error) {
	if r.Price.IsNegative() {
		return items.CreateItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").WithDetails(map[string]string{"price": "must be at least 0"})
	}
	return items.CreateItemInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       *r.Price,
		Type:        strings.TrimSpace(r.Type),
		Family:      strings.TrimSpace(r.Family),
		ImageURL:    r.ImageURL,
	}, nil
}

type itemImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

// ItemList returns the items matching the optional type, family and search filters.
// Search length is enforced by the service so over-long input is rejected, not cut.
func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		filters := items.ListFilters{
			Type:   validators.QueryString(r, "type", filterParamMaxLength),
			Family: validators.QueryString(r, "family", filterParamMaxLength),
			Search: validators.QueryString(r, "search", 0),
		}

		list, err := svc.ListItems(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ItemFilterOptions(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		options, err := svc.FilterOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, options)
	}
}

// ItemCreate creates an item on behalf of the authenticated manager.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateItem(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ItemAttachImage(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AttachImage(r.Context(), itemID, strings.TrimSpace(payload.ImageURL))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
