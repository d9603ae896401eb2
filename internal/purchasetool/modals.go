package purchasetool

// The modals are independent; opening one never closes another.

func (t *Tool) OpenCreateModal() {
	t.setFlag(func() { t.showCreate = true })
}

func (t *Tool) CloseCreateModal() {
	t.setFlag(func() { t.showCreate = false })
}

func (t *Tool) OpenCartModal() {
	t.setFlag(func() { t.showCart = true })
}

func (t *Tool) CloseCartModal() {
	t.setFlag(func() { t.showCart = false })
}

// OpenDetailsModal selects itemID and shows its details.
func (t *Tool) OpenDetailsModal(itemID string) {
	t.setFlag(func() {
		t.selectedItemID = itemID
		t.showDetails = true
	})
}

// CloseDetailsModal hides the details and clears the selection.
func (t *Tool) CloseDetailsModal() {
	t.setFlag(func() {
		t.showDetails = false
		t.selectedItemID = ""
	})
}

func (t *Tool) setFlag(mutate func()) {
	t.mu.Lock()
	mutate()
	t.mu.Unlock()
	t.render()
}
