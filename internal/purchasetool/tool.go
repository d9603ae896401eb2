package purchasetool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/metrics"
	"github.com/shopspring/decimal"
)

const defaultEnrichmentTimeout = 5 * time.Second

// Deps are the collaborators the tool talks to. Profiles, Renderer, Metrics and
// Logger are optional.
type Deps struct {
	Items     ItemSource
	Purchases PurchaseCreator
	Images    ImageFinder
	Attacher  ImageAttacher
	Records   RecordSubmitter
	Navigator Navigator
	Notifier  Notifier
	Profiles  ProfileSource
	Renderer  Renderer
	Metrics   *metrics.RemoteCallMetrics
	Logger    *logger.Logger
}

// Options configures a Tool.
type Options struct {
	// AccountID is the account whose profile is shown on Attach.
	AccountID         string
	EnrichmentTimeout time.Duration
}

// Tool holds the filter, catalog, cart and modal state of the purchase screen.
// All methods are safe for concurrent use. The mutex is never held across a
// remote call or while calling Notifier, Renderer or Navigator.
type Tool struct {
	deps Deps
	opts Options
	logg *logger.Logger

	mu sync.Mutex

	filters       FilterState
	items         []Item
	typeOptions   []FilterOption
	familyOptions []FilterOption
	itemsSeq      uint64

	cart             []CartLine
	checkoutInFlight bool

	showCreate     bool
	showCart       bool
	showDetails    bool
	selectedItemID string

	user    UserProfile
	account AccountProfile
}

// New validates the collaborators and returns a tool in its default state.
func New(deps Deps, opts Options) (*Tool, error) {
	switch {
	case deps.Items == nil:
		return nil, fmt.Errorf("item source required")
	case deps.Purchases == nil:
		return nil, fmt.Errorf("purchase creator required")
	case deps.Images == nil:
		return nil, fmt.Errorf("image finder required")
	case deps.Attacher == nil:
		return nil, fmt.Errorf("image attacher required")
	case deps.Records == nil:
		return nil, fmt.Errorf("record submitter required")
	case deps.Navigator == nil:
		return nil, fmt.Errorf("navigator required")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	}
	if opts.EnrichmentTimeout <= 0 {
		opts.EnrichmentTimeout = defaultEnrichmentTimeout
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Tool{
		deps:          deps,
		opts:          opts,
		logg:          logg,
		typeOptions:   allOptions(),
		familyOptions: allOptions(),
	}, nil
}

// Attach loads the user and account profiles, then the filter options and items.
// Profile failures are logged and leave the defaults in place.
func (t *Tool) Attach(ctx context.Context) error {
	t.loadProfiles(ctx)
	_ = t.LoadFilterOptions(ctx)
	return t.LoadItems(ctx)
}

func (t *Tool) loadProfiles(ctx context.Context) {
	if t.deps.Profiles == nil {
		return
	}

	started := time.Now()
	user, err := t.deps.Profiles.UserProfile(ctx)
	t.observe(opUserProfile, started, err)
	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "user profile unavailable")
	} else {
		t.mu.Lock()
		t.user = user
		t.mu.Unlock()
	}

	if t.opts.AccountID != "" {
		started = time.Now()
		account, err := t.deps.Profiles.AccountProfile(ctx, t.opts.AccountID)
		t.observe(opAccountProfile, started, err)
		if err != nil {
			t.logg.Warn(t.logg.WithAccountID(t.logg.WithField(ctx, "error", err.Error()), t.opts.AccountID), "account profile unavailable")
		} else {
			t.mu.Lock()
			t.account = account
			t.mu.Unlock()
		}
	}
	t.render()
}

// CanCreateItems reports whether the current user may open the creation form.
func (t *Tool) CanCreateItems() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.user.IsManager
}

// AccountNumberDisplay returns the account number or "N/A".
func (t *Tool) AccountNumberDisplay() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return displayOrNA(t.account.AccountNumber)
}

// AccountIndustryDisplay returns the account industry or "N/A".
func (t *Tool) AccountIndustryDisplay() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return displayOrNA(t.account.Industry)
}

// View returns a snapshot of the current state.
func (t *Tool) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Tool) viewLocked() View {
	view := View{
		Filters:                t.filters,
		Items:                  append([]Item(nil), t.items...),
		TypeOptions:            append([]FilterOption(nil), t.typeOptions...),
		FamilyOptions:          append([]FilterOption(nil), t.familyOptions...),
		Cart:                   append([]CartLine(nil), t.cart...),
		CartTotal:              cartTotal(t.cart),
		CartLabel:              cartLabel(t.cart),
		ShowCreate:             t.showCreate,
		ShowCart:               t.showCart,
		ShowDetails:            t.showDetails,
		CanCreateItems:         t.user.IsManager,
		CheckoutPending:        t.checkoutInFlight,
		AccountName:            t.account.Name,
		AccountNumberDisplay:   displayOrNA(t.account.AccountNumber),
		AccountIndustryDisplay: displayOrNA(t.account.Industry),
	}
	if item, ok := t.findItemLocked(t.selectedItemID); ok {
		view.SelectedItem = &item
	}
	return view
}

func (t *Tool) render() {
	if t.deps.Renderer == nil {
		return
	}
	t.mu.Lock()
	view := t.viewLocked()
	t.mu.Unlock()
	t.deps.Renderer.Render(view)
}

func (t *Tool) findItemLocked(id string) (Item, bool) {
	if id == "" {
		return Item{}, false
	}
	for _, item := range t.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func cartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

func cartCount(lines []CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

func cartLabel(lines []CartLine) string {
	return fmt.Sprintf("Cart (%d)", cartCount(lines))
}
