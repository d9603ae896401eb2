package purchasetool

import (
	"context"
	"time"
)

// SetTypeFilter overwrites the type constraint and re-fetches items.
func (t *Tool) SetTypeFilter(ctx context.Context, value string) error {
	t.mu.Lock()
	t.filters.Type = value
	t.mu.Unlock()
	return t.LoadItems(ctx)
}

// SetFamilyFilter overwrites the family constraint and re-fetches items.
func (t *Tool) SetFamilyFilter(ctx context.Context, value string) error {
	t.mu.Lock()
	t.filters.Family = value
	t.mu.Unlock()
	return t.LoadItems(ctx)
}

// SetSearchText overwrites the search text and re-fetches items. Every call
// issues a request.
func (t *Tool) SetSearchText(ctx context.Context, value string) error {
	t.mu.Lock()
	t.filters.Search = value
	t.mu.Unlock()
	return t.LoadItems(ctx)
}

// Filters returns the current filter state.
func (t *Tool) Filters() FilterState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters
}

// LoadItems fetches items for the current filters and replaces the list on success.
// Only the response to the most recently issued request is applied; older responses,
// successful or not, are dropped.
func (t *Tool) LoadItems(ctx context.Context) error {
	t.mu.Lock()
	t.itemsSeq++
	seq := t.itemsSeq
	filters := t.filters
	t.mu.Unlock()

	started := time.Now()
	items, err := t.deps.Items.ListItems(ctx, filters)
	t.observe(opListItems, started, err)

	t.mu.Lock()
	if seq != t.itemsSeq {
		t.mu.Unlock()
		t.deps.Metrics.IncStale(opListItems)
		t.logg.Debug(t.logg.WithField(ctx, "seq", seq), "dropping stale item response")
		return nil
	}
	if err != nil {
		t.mu.Unlock()
		t.notifyFailure(ctx, opListItems, titleError, err, fallbackLoadItems)
		return err
	}
	t.items = append([]Item(nil), items...)
	t.mu.Unlock()

	t.render()
	return nil
}

// LoadFilterOptions refreshes the type and family dropdowns. On failure each
// dimension falls back to a single "All" option without notifying the user.
func (t *Tool) LoadFilterOptions(ctx context.Context) error {
	started := time.Now()
	values, err := t.deps.Items.FilterValues(ctx)
	t.observe(opFilterValues, started, err)

	t.mu.Lock()
	if err != nil {
		t.typeOptions = allOptions()
		t.familyOptions = allOptions()
	} else {
		t.typeOptions = toOptions(values.Types)
		t.familyOptions = toOptions(values.Families)
	}
	t.mu.Unlock()

	if err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "filter options unavailable")
	}
	t.render()
	return err
}

// Items returns the last fetched item list.
func (t *Tool) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Item(nil), t.items...)
}

// TypeOptions returns the selectable type values, "All" first.
func (t *Tool) TypeOptions() []FilterOption {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]FilterOption(nil), t.typeOptions...)
}

// FamilyOptions returns the selectable family values, "All" first.
func (t *Tool) FamilyOptions() []FilterOption {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]FilterOption(nil), t.familyOptions...)
}

// SelectedItem returns the item shown in the details modal, if it is still listed.
func (t *Tool) SelectedItem() (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findItemLocked(t.selectedItemID)
}
