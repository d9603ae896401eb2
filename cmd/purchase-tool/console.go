package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
	"github.com/angelmondragon/itempurchase/pkg/enums"
)

// console implements the presentation ports of the purchase tool on a plain
// text stream. Writes are serialized because fetches run in goroutines.
type console struct {
	mu      sync.Mutex
	out     io.Writer
	baseURL string
}

func newConsole(out io.Writer, baseURL string) *console {
	return &console{out: out, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *console) Notify(n purchasetool.Notification) {
	c.printf("[%s] %s: %s\n", strings.ToUpper(n.Variant.String()), n.Title, n.Message)
}

func (c *console) Navigate(_ context.Context, objectType enums.RecordType, recordID string) error {
	if recordID == "" {
		return fmt.Errorf("navigate to %s: empty record id", objectType)
	}
	c.printf("-> %s %s (%s)\n", objectType, recordID, c.recordURL(objectType, recordID))
	return nil
}

// Render prints a one-line status for every state change.
func (c *console) Render(view purchasetool.View) {
	c.printf("%s\n", statusLine(view))
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) recordURL(objectType enums.RecordType, recordID string) string {
	return fmt.Sprintf("%s/records/%s/%s", c.baseURL, strings.ToLower(objectType.String()), recordID)
}

func statusLine(view purchasetool.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "items=%d", len(view.Items))
	if view.Filters.Type != "" {
		fmt.Fprintf(&b, " type=%q", view.Filters.Type)
	}
	if view.Filters.Family != "" {
		fmt.Fprintf(&b, " family=%q", view.Filters.Family)
	}
	if view.Filters.Search != "" {
		fmt.Fprintf(&b, " search=%q", view.Filters.Search)
	}
	fmt.Fprintf(&b, " | %s total=%s", view.CartLabel, view.CartTotal.StringFixed(2))
	if view.CheckoutPending {
		b.WriteString(" (checking out)")
	}
	var open []string
	if view.ShowCreate {
		open = append(open, "create")
	}
	if view.ShowCart {
		open = append(open, "cart")
	}
	if view.ShowDetails {
		open = append(open, "details")
	}
	if len(open) > 0 {
		fmt.Fprintf(&b, " | open: %s", strings.Join(open, ","))
	}
	return b.String()
}
