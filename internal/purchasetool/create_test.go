package purchasetool

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/enums"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

var itemCreated = Notification{Title: "Success", Message: "Item created!", Variant: enums.NotificationVariantSuccess}

func TestCreateItemAttachesFoundImage(t *testing.T) {
	h := newHarness(t, Options{})
	h.images.url = "https://img.test/lamp.jpg"
	h.tool.OpenCreateModal()
	fetchesBefore := len(h.items.calls())

	id, err := h.tool.CreateItem(context.Background(), RecordFields{"name": " Desk Lamp ", "price": "12.50"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if id != "item-new" {
		t.Fatalf("unexpected id %q", id)
	}
	if h.records.objectType != enums.RecordTypeItem {
		t.Fatalf("expected Item record type, got %s", h.records.objectType)
	}
	if !reflect.DeepEqual(h.images.queries, []string{"Desk Lamp"}) {
		t.Fatalf("unexpected image queries %v", h.images.queries)
	}
	want := []attachCall{{ItemID: "item-new", ImageURL: "https://img.test/lamp.jpg"}}
	if !reflect.DeepEqual(h.attacher.calls, want) {
		t.Fatalf("unexpected attach calls %+v", h.attacher.calls)
	}
	assertCreateFinished(t, h, fetchesBefore)
}

func TestCreateItemEnrichmentFailuresAreSwallowed(t *testing.T) {
	cases := map[string]func(h *harness){
		"lookup fails": func(h *harness) { h.images.err = errors.New("unsplash down") },
		"attach fails": func(h *harness) {
			h.images.url = "https://img.test/x.jpg"
			h.attacher.err = errors.New("db down")
		},
		"no image found": func(h *harness) {},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, Options{})
			setup(h)
			h.tool.OpenCreateModal()
			fetchesBefore := len(h.items.calls())

			if _, err := h.tool.CreateItem(context.Background(), RecordFields{"name": "Lamp"}); err != nil {
				t.Fatalf("create item should succeed, got %v", err)
			}
			assertCreateFinished(t, h, fetchesBefore)
		})
	}
}

func TestCreateItemEnrichmentIsBoundedByTimeout(t *testing.T) {
	h := newHarness(t, Options{EnrichmentTimeout: 20 * time.Millisecond})
	h.images.block = true
	h.tool.OpenCreateModal()
	fetchesBefore := len(h.items.calls())

	started := time.Now()
	if _, err := h.tool.CreateItem(context.Background(), RecordFields{"name": "Lamp"}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("enrichment was not bounded, took %v", elapsed)
	}
	if len(h.attacher.calls) != 0 {
		t.Fatalf("attach should not run after a timed out lookup")
	}
	assertCreateFinished(t, h, fetchesBefore)
}

func TestCreateItemBlankNameSkipsEnrichment(t *testing.T) {
	h := newHarness(t, Options{})
	h.images.url = "https://img.test/x.jpg"

	if _, err := h.tool.CreateItem(context.Background(), RecordFields{"name": "   "}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if len(h.images.queries) != 0 || len(h.attacher.calls) != 0 {
		t.Fatalf("enrichment should be skipped for blank names")
	}
	notes := h.notifier.all()
	if notes[len(notes)-1] != itemCreated {
		t.Fatalf("expected success notification, got %+v", notes)
	}
}

func TestCreateItemSubmitFailureKeepsModalOpen(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{name: "backend message", err: pkgerrors.New(pkgerrors.CodeForbidden, "only managers can create items"), message: "only managers can create items"},
		{name: "generic", err: errors.New("connection reset"), message: "Failed to create item"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.records.err = tc.err
			h.tool.OpenCreateModal()
			fetchesBefore := len(h.items.calls())

			if _, err := h.tool.CreateItem(context.Background(), RecordFields{"name": "Lamp"}); !errors.Is(err, tc.err) {
				t.Fatalf("expected submit error, got %v", err)
			}
			if !h.tool.View().ShowCreate {
				t.Fatalf("creation modal should stay open")
			}
			if len(h.items.calls()) != fetchesBefore {
				t.Fatalf("items should not be reloaded")
			}
			if len(h.images.queries) != 0 {
				t.Fatalf("no enrichment after a failed submit")
			}
			want := Notification{Title: "Error", Message: tc.message, Variant: enums.NotificationVariantError}
			if notes := h.notifier.all(); len(notes) != 1 || notes[0] != want {
				t.Fatalf("unexpected notifications %+v", notes)
			}
		})
	}
}

func assertCreateFinished(t *testing.T, h *harness, fetchesBefore int) {
	t.Helper()
	if h.tool.View().ShowCreate {
		t.Fatalf("creation modal should be closed")
	}
	if got := len(h.items.calls()); got != fetchesBefore+1 {
		t.Fatalf("expected one item refresh, got %d", got-fetchesBefore)
	}
	notes := h.notifier.all()
	if len(notes) == 0 || notes[len(notes)-1] != itemCreated {
		t.Fatalf("expected success notification, got %+v", notes)
	}
}
