package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/itempurchase/api/responses"
	"github.com/angelmondragon/itempurchase/api/validators"
	"github.com/angelmondragon/itempurchase/internal/purchases"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
)

type purchaseLineRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type purchaseCreateRequest struct {
	AccountID string                `json:"account_id" validate:"required,uuid"`
	Lines     []purchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r purchaseCreateRequest) toInput(idempotencyKey string) purchases.CreatePurchaseInput {
	input := purchases.CreatePurchaseInput{
		AccountID:      uuid.MustParse(r.AccountID),
		Lines:          make([]purchases.LineInput, 0, len(r.Lines)),
		IdempotencyKey: idempotencyKey,
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, purchases.LineInput{
			ItemID:   uuid.MustParse(line.ItemID),
			Quantity: line.Quantity,
		})
	}
	return input
}

// PurchaseCreate books a cart snapshot. The idempotency middleware replays
// retries from redis; the key is also stored with the purchase so retries stay
// safe when redis is unavailable.
func PurchaseCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload purchaseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithAccountID(ctx, payload.AccountID)
		}

		created, err := svc.CreatePurchase(ctx, userID, payload.toInput(r.Header.Get("Idempotency-Key")))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"purchase_id":    created.ID.String(),
				"total_quantity": created.TotalQuantity,
				"grand_total":    created.GrandTotal.StringFixed(2),
			}), "purchase.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
