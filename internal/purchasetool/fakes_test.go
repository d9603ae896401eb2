package purchasetool

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/itempurchase/pkg/enums"
	"github.com/shopspring/decimal"
)

type fakeItems struct {
	mu        sync.Mutex
	listCalls []FilterState
	listFn    func(call int, filters FilterState) ([]Item, error)
	values    FilterValues
	valuesErr error
	order     *[]string
}

func (f *fakeItems) ListItems(ctx context.Context, filters FilterState) ([]Item, error) {
	f.mu.Lock()
	call := len(f.listCalls)
	f.listCalls = append(f.listCalls, filters)
	fn := f.listFn
	if f.order != nil {
		*f.order = append(*f.order, "items")
	}
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(call, filters)
}

func (f *fakeItems) FilterValues(ctx context.Context) (FilterValues, error) {
	f.mu.Lock()
	if f.order != nil {
		*f.order = append(*f.order, "filter_options")
	}
	f.mu.Unlock()
	return f.values, f.valuesErr
}

func (f *fakeItems) calls() []FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FilterState(nil), f.listCalls...)
}

type fakePurchases struct {
	mu      sync.Mutex
	reqs    []PurchaseRequest
	id      string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakePurchases) CreatePurchase(ctx context.Context, req PurchaseRequest) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return f.id, f.err
}

func (f *fakePurchases) requests() []PurchaseRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PurchaseRequest(nil), f.reqs...)
}

type fakeImages struct {
	mu      sync.Mutex
	url     string
	err     error
	block   bool
	queries []string
}

func (f *fakeImages) FindImageURL(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.url, f.err
}

type attachCall struct {
	ItemID   string
	ImageURL string
}

type fakeAttacher struct {
	mu    sync.Mutex
	calls []attachCall
	err   error
}

func (f *fakeAttacher) AttachImage(ctx context.Context, itemID, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, attachCall{ItemID: itemID, ImageURL: imageURL})
	return f.err
}

type fakeRecords struct {
	mu         sync.Mutex
	objectType enums.RecordType
	fields     RecordFields
	id         string
	err        error
}

func (f *fakeRecords) SubmitRecord(ctx context.Context, objectType enums.RecordType, fields RecordFields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objectType = objectType
	f.fields = fields
	return f.id, f.err
}

type navigation struct {
	ObjectType enums.RecordType
	RecordID   string
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls []navigation
	err   error
}

func (f *fakeNavigator) Navigate(ctx context.Context, objectType enums.RecordType, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, navigation{ObjectType: objectType, RecordID: recordID})
	return f.err
}

type fakeNotifier struct {
	mu   sync.Mutex
	list []Notification
}

func (f *fakeNotifier) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, n)
}

func (f *fakeNotifier) all() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.list...)
}

type fakeProfiles struct {
	user       UserProfile
	userErr    error
	account    AccountProfile
	accountErr error
	accountIDs []string
	order      *[]string
}

func (f *fakeProfiles) UserProfile(ctx context.Context) (UserProfile, error) {
	if f.order != nil {
		*f.order = append(*f.order, "user")
	}
	return f.user, f.userErr
}

func (f *fakeProfiles) AccountProfile(ctx context.Context, accountID string) (AccountProfile, error) {
	if f.order != nil {
		*f.order = append(*f.order, "account")
	}
	f.accountIDs = append(f.accountIDs, accountID)
	return f.account, f.accountErr
}

type fakeRenderer struct {
	mu    sync.Mutex
	views []View
}

func (f *fakeRenderer) Render(view View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
}

func (f *fakeRenderer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.views)
}

func (f *fakeRenderer) last() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[len(f.views)-1]
}

type harness struct {
	tool      *Tool
	items     *fakeItems
	purchases *fakePurchases
	images    *fakeImages
	attacher  *fakeAttacher
	records   *fakeRecords
	navigator *fakeNavigator
	notifier  *fakeNotifier
	profiles  *fakeProfiles
	renderer  *fakeRenderer
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		items:     &fakeItems{},
		purchases: &fakePurchases{id: "purchase-1"},
		images:    &fakeImages{},
		attacher:  &fakeAttacher{},
		records:   &fakeRecords{id: "item-new"},
		navigator: &fakeNavigator{},
		notifier:  &fakeNotifier{},
		profiles:  &fakeProfiles{},
		renderer:  &fakeRenderer{},
	}
	tool, err := New(Deps{
		Items:     h.items,
		Purchases: h.purchases,
		Images:    h.images,
		Attacher:  h.attacher,
		Records:   h.records,
		Navigator: h.navigator,
		Notifier:  h.notifier,
		Profiles:  h.profiles,
		Renderer:  h.renderer,
	}, opts)
	if err != nil {
		t.Fatalf("new tool: %v", err)
	}
	h.tool = tool
	return h
}

// withItems makes every list call return items and loads them once.
func (h *harness) withItems(t *testing.T, items ...Item) {
	t.Helper()
	h.items.listFn = func(int, FilterState) ([]Item, error) { return items, nil }
	if err := h.tool.LoadItems(context.Background()); err != nil {
		t.Fatalf("load items: %v", err)
	}
}

func testItem(id, name, price string) Item {
	return Item{
		ID:     id,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Type:   "Furniture",
		Family: "Office",
	}
}
