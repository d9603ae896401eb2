package purchasetool

import (
	"context"

	"github.com/angelmondragon/itempurchase/pkg/enums"
)

// ItemSource queries the catalog. Filtering is applied by the source.
type ItemSource interface {
	ListItems(ctx context.Context, filters FilterState) ([]Item, error)
	FilterValues(ctx context.Context) (FilterValues, error)
}

// PurchaseCreator books a purchase atomically and returns the new record id.
type PurchaseCreator interface {
	CreatePurchase(ctx context.Context, req PurchaseRequest) (string, error)
}

// ImageFinder returns a representative image URL for a query, or "" when none matched.
type ImageFinder interface {
	FindImageURL(ctx context.Context, query string) (string, error)
}

// ImageAttacher stores an image URL on an existing item.
type ImageAttacher interface {
	AttachImage(ctx context.Context, itemID, imageURL string) error
}

// RecordSubmitter persists a generic record form and returns the new record id.
type RecordSubmitter interface {
	SubmitRecord(ctx context.Context, objectType enums.RecordType, fields RecordFields) (string, error)
}

// Navigator moves the user to a record page.
type Navigator interface {
	Navigate(ctx context.Context, objectType enums.RecordType, recordID string) error
}

// Notifier presents transient user notifications.
type Notifier interface {
	Notify(n Notification)
}

// ProfileSource fetches the display fields of the current user and the bound account.
type ProfileSource interface {
	UserProfile(ctx context.Context) (UserProfile, error)
	AccountProfile(ctx context.Context, accountID string) (AccountProfile, error)
}

// Renderer receives a fresh snapshot after every state change.
type Renderer interface {
	Render(view View)
}
