package purchasetool

import (
	"context"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/enums"
)

// CreateItem submits the creation form. Validation and persistence belong to the
// record submitter. After a successful submit the item is enriched with an image
// on a best-effort basis, the creation modal closes, the list is refreshed and a
// success notification is shown whatever the image outcome. A failed submit
// keeps the modal open.
func (t *Tool) CreateItem(ctx context.Context, fields RecordFields) (string, error) {
	started := time.Now()
	itemID, err := t.deps.Records.SubmitRecord(ctx, enums.RecordTypeItem, fields)
	t.observe(opSubmitRecord, started, err)
	if err != nil {
		t.notifyFailure(ctx, opSubmitRecord, titleError, err, fallbackCreateItem)
		return "", err
	}

	t.enrichWithImage(t.logg.WithItemID(ctx, itemID), itemID, fields.Name())

	t.mu.Lock()
	t.showCreate = false
	t.mu.Unlock()
	t.render()

	_ = t.LoadItems(ctx)
	t.notify(titleSuccess, messageItemCreated, enums.NotificationVariantSuccess)
	return itemID, nil
}

// enrichWithImage looks up an image by name and attaches it. Failures are logged only.
func (t *Tool) enrichWithImage(ctx context.Context, itemID, name string) {
	if name == "" || itemID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.EnrichmentTimeout)
	defer cancel()

	started := time.Now()
	imageURL, err := t.deps.Images.FindImageURL(ctx, name)
	t.observe(opFindImage, started, err)
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "image lookup failed")
		return
	}
	if imageURL == "" {
		return
	}

	started = time.Now()
	err = t.deps.Attacher.AttachImage(ctx, itemID, imageURL)
	t.observe(opAttachImage, started, err)
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "image attach failed")
	}
}
