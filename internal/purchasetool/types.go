package purchasetool

import (
	"strings"

	"github.com/angelmondragon/itempurchase/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	allOptionLabel = "All"
	notAvailable   = "N/A"
)

// Item is a catalog entry as returned by the last fetch.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Type        string
	Family      string
	ImageURL    string
}

// CartLine copies the display fields of an item plus the desired quantity.
type CartLine struct {
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Type     string
	Family   string
	ImageURL string
	Quantity int
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// FilterState holds the listing constraints. Empty values mean no constraint.
type FilterState struct {
	Type   string
	Family string
	Search string
}

// FilterOption is one selectable value of a filter dropdown.
type FilterOption struct {
	Label string
	Value string
}

// FilterValues are the distinct values reported by the item source.
type FilterValues struct {
	Types    []string
	Families []string
}

// PurchaseRequest is the cart snapshot sent at checkout.
type PurchaseRequest struct {
	AccountID      string
	Lines          []CartLine
	IdempotencyKey string
}

// RecordFields are the values of a generic record form.
type RecordFields map[string]any

// Name returns the trimmed "name" field, or "" when absent.
func (f RecordFields) Name() string {
	if f == nil {
		return ""
	}
	name, _ := f["name"].(string)
	return strings.TrimSpace(name)
}

// Notification is a transient message shown to the user.
type Notification struct {
	Title   string
	Message string
	Variant enums.NotificationVariant
}

// UserProfile describes the operator of the tool.
type UserProfile struct {
	ID        string
	Name      string
	IsManager bool
}

// AccountProfile holds the display fields of the account purchases are booked against.
type AccountProfile struct {
	ID            string
	Name          string
	AccountNumber string
	Industry      string
}

// View is an immutable snapshot handed to the renderer.
type View struct {
	Filters       FilterState
	Items         []Item
	TypeOptions   []FilterOption
	FamilyOptions []FilterOption

	Cart      []CartLine
	CartTotal decimal.Decimal
	CartLabel string

	ShowCreate      bool
	ShowCart        bool
	ShowDetails     bool
	SelectedItem    *Item
	CanCreateItems  bool
	CheckoutPending bool

	AccountName            string
	AccountNumberDisplay   string
	AccountIndustryDisplay string
}

func allOptions() []FilterOption {
	return []FilterOption{{Label: allOptionLabel, Value: ""}}
}

func toOptions(values []string) []FilterOption {
	options := allOptions()
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		options = append(options, FilterOption{Label: v, Value: v})
	}
	return options
}

func displayOrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}
