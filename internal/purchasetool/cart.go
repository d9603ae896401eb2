package purchasetool

import (
	"context"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddToCart adds one unit of a listed item. Unknown ids are ignored and
// reported as false.
func (t *Tool) AddToCart(itemID string) bool {
	t.mu.Lock()
	item, ok := t.findItemLocked(itemID)
	if !ok {
		t.mu.Unlock()
		return false
	}

	found := false
	for i := range t.cart {
		if t.cart[i].ItemID == itemID {
			t.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		t.cart = append(t.cart, CartLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Type:     item.Type,
			Family:   item.Family,
			ImageURL: item.ImageURL,
			Quantity: 1,
		})
	}
	t.mu.Unlock()

	t.render()
	t.notify(titleAddedToCart, item.Name, enums.NotificationVariantSuccess)
	return true
}

// CartLines returns a copy of the cart.
func (t *Tool) CartLines() []CartLine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]CartLine(nil), t.cart...)
}

// CartTotal is the sum of price times quantity over all lines.
func (t *Tool) CartTotal() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cartTotal(t.cart)
}

// CartCount is the sum of quantities.
func (t *Tool) CartCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cartCount(t.cart)
}

// CartLabel formats the cart badge, e.g. "Cart (3)".
func (t *Tool) CartLabel() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cartLabel(t.cart)
}

// Checkout submits the whole cart as one purchase for accountID. An empty cart
// or a checkout already in flight makes it a no-op. On success the submitted
// quantities leave the cart, the cart modal closes and the user is taken to the
// new purchase. On failure the cart is left exactly as it was.
func (t *Tool) Checkout(ctx context.Context, accountID string) error {
	t.mu.Lock()
	if t.checkoutInFlight || len(t.cart) == 0 {
		t.mu.Unlock()
		return nil
	}
	t.checkoutInFlight = true
	req := PurchaseRequest{
		AccountID:      accountID,
		Lines:          append([]CartLine(nil), t.cart...),
		IdempotencyKey: uuid.NewString(),
	}
	t.mu.Unlock()
	t.render()

	ctx = t.logg.WithFields(ctx, map[string]any{"account_id": accountID, "idempotency_key": req.IdempotencyKey})

	started := time.Now()
	purchaseID, err := t.deps.Purchases.CreatePurchase(ctx, req)
	t.observe(opCreatePurchase, started, err)

	t.mu.Lock()
	t.checkoutInFlight = false
	if err != nil {
		t.mu.Unlock()
		t.render()
		t.notifyFailure(ctx, opCreatePurchase, titleCheckoutError, err, fallbackCheckout)
		return err
	}
	t.cart = subtractLines(t.cart, req.Lines)
	t.showCart = false
	t.mu.Unlock()

	t.logg.Info(t.logg.WithField(ctx, "purchase_id", purchaseID), "purchase created")
	t.render()

	started = time.Now()
	navErr := t.deps.Navigator.Navigate(ctx, enums.RecordTypePurchase, purchaseID)
	t.observe(opNavigate, started, navErr)
	if navErr != nil {
		t.logg.Error(ctx, "navigate to purchase failed", navErr)
	}
	return nil
}

// subtractLines removes the submitted quantities. Lines added or incremented
// after the snapshot keep the difference.
func subtractLines(cart, submitted []CartLine) []CartLine {
	sent := make(map[string]int, len(submitted))
	for _, line := range submitted {
		sent[line.ItemID] += line.Quantity
	}
	remaining := make([]CartLine, 0, len(cart))
	for _, line := range cart {
		line.Quantity -= sent[line.ItemID]
		if line.Quantity >= 1 {
			remaining = append(remaining, line)
		}
	}
	if len(remaining) == 0 {
		return nil
	}
	return remaining
}
