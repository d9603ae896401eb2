package purchasetool

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/enums"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

const (
	opListItems      = "list_items"
	opFilterValues   = "filter_values"
	opCreatePurchase = "create_purchase"
	opSubmitRecord   = "submit_record"
	opFindImage      = "find_image"
	opAttachImage    = "attach_image"
	opUserProfile    = "user_profile"
	opAccountProfile = "account_profile"
	opNavigate       = "navigate"
)

const (
	titleError         = "Error"
	titleSuccess       = "Success"
	titleAddedToCart   = "Added to Cart"
	titleCheckoutError = "Checkout Error"

	fallbackLoadItems  = "Failed to load items"
	fallbackCheckout   = "Checkout failed"
	fallbackCreateItem = "Failed to create item"
	messageItemCreated = "Item created!"
)

func (t *Tool) observe(op string, started time.Time, err error) {
	t.deps.Metrics.Observe(op, time.Since(started), err)
}

func (t *Tool) notify(title, message string, variant enums.NotificationVariant) {
	t.deps.Notifier.Notify(Notification{Title: title, Message: message, Variant: variant})
}

// notifyFailure reports err using the backend-provided message when there is one.
func (t *Tool) notifyFailure(ctx context.Context, op, title string, err error, fallback string) {
	t.logg.Warn(t.logg.WithFields(ctx, map[string]any{"operation": op, "error": err.Error()}), "remote call failed")
	t.notify(title, backendMessage(err, fallback), enums.NotificationVariantError)
}

// backendMessage returns the message carried by a backend error envelope, or fallback.
func backendMessage(err error, fallback string) string {
	if typed := pkgerrors.As(err); typed != nil {
		if msg := strings.TrimSpace(typed.Message()); msg != "" {
			return msg
		}
	}
	return fallback
}
