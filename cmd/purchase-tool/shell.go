package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/angelmondragon/itempurchase/internal/purchasetool"
)

const helpText = `commands:
  list                          show items, filters and cart
  type <value|all>              filter by type
  family <value|all>            filter by family
  search [text]                 filter by name (empty clears)
  refresh                       reload items
  add <item-id>                 add one unit to the cart
  details <item-id>             show item details
  cart                          show the cart
  close <create|cart|details>   close a panel
  checkout                      book the cart as a purchase
  create key=value ...          create an item (name, price, type, family, description)
  stats                         remote call counters
  help | quit`

var errQuit = errors.New("quit")

// toolAPI is the subset of the purchase tool driven by the shell.
type toolAPI interface {
	SetTypeFilter(ctx context.Context, value string) error
	SetFamilyFilter(ctx context.Context, value string) error
	SetSearchText(ctx context.Context, value string) error
	LoadItems(ctx context.Context) error
	AddToCart(itemID string) bool
	Checkout(ctx context.Context, accountID string) error
	CreateItem(ctx context.Context, fields purchasetool.RecordFields) (string, error)
	CanCreateItems() bool
	OpenCreateModal()
	CloseCreateModal()
	OpenCartModal()
	CloseCartModal()
	OpenDetailsModal(itemID string)
	CloseDetailsModal()
	View() purchasetool.View
}

type shell struct {
	tool      toolAPI
	out       *console
	gatherer  prometheus.Gatherer
	accountID string

	fetches sync.WaitGroup
}

func newShell(tool toolAPI, out *console, gatherer prometheus.Gatherer, accountID string) *shell {
	return &shell{tool: tool, out: out, gatherer: gatherer, accountID: accountID}
}

// run reads commands until quit, EOF or cancellation. Pending fetches are
// awaited before returning.
func (s *shell) run(ctx context.Context, scanner *bufio.Scanner) error {
	defer s.fetches.Wait()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		s.out.printf("> ")
		select {
		case <-ctx.Done():
			s.out.printf("\n")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := s.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				s.out.printf("error: %v\n", err)
			}
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		s.out.printf("%s\n", helpText)
	case "quit", "exit":
		return errQuit
	case "list", "ls":
		s.printView()
	case "type":
		value, err := filterArg(rest)
		if err != nil {
			return err
		}
		s.fetch(ctx, func(ctx context.Context) error { return s.tool.SetTypeFilter(ctx, value) })
	case "family":
		value, err := filterArg(rest)
		if err != nil {
			return err
		}
		s.fetch(ctx, func(ctx context.Context) error { return s.tool.SetFamilyFilter(ctx, value) })
	case "search":
		value := strings.Join(rest, " ")
		s.fetch(ctx, func(ctx context.Context) error { return s.tool.SetSearchText(ctx, value) })
	case "refresh":
		s.fetch(ctx, s.tool.LoadItems)
	case "add":
		if len(rest) != 1 {
			return fmt.Errorf("usage: add <item-id>")
		}
		if !s.tool.AddToCart(rest[0]) {
			return fmt.Errorf("item %s is not in the current listing", rest[0])
		}
	case "details":
		if len(rest) != 1 {
			return fmt.Errorf("usage: details <item-id>")
		}
		s.tool.OpenDetailsModal(rest[0])
		s.printDetails()
	case "cart":
		s.tool.OpenCartModal()
		s.printCart()
	case "close":
		if len(rest) != 1 {
			return fmt.Errorf("usage: close <create|cart|details>")
		}
		return s.closePanel(rest[0])
	case "checkout":
		if s.accountID == "" {
			return fmt.Errorf("no account bound; set ITEMPURCHASE_CLIENT_ACCOUNT_ID")
		}
		return s.tool.Checkout(ctx, s.accountID)
	case "create":
		return s.create(ctx, rest)
	case "stats":
		return s.printStats()
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// fetch runs a listing reload in the background; out-of-order responses are
// discarded by the tool.
func (s *shell) fetch(ctx context.Context, fn func(context.Context) error) {
	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		_ = fn(ctx)
	}()
}

func (s *shell) closePanel(name string) error {
	switch strings.ToLower(name) {
	case "create":
		s.tool.CloseCreateModal()
	case "cart":
		s.tool.CloseCartModal()
	case "details":
		s.tool.CloseDetailsModal()
	default:
		return fmt.Errorf("unknown panel %q", name)
	}
	return nil
}

func (s *shell) create(ctx context.Context, args []string) error {
	if !s.tool.CanCreateItems() {
		return fmt.Errorf("only managers can create items")
	}
	fields, err := parseFields(args)
	if err != nil {
		return err
	}
	s.tool.OpenCreateModal()
	// failures are notified by the tool and leave the panel open
	_, _ = s.tool.CreateItem(ctx, fields)
	return nil
}

func (s *shell) printView() {
	view := s.tool.View()
	s.out.printf("account: %s  number: %s  industry: %s\n",
		displayName(view.AccountName), view.AccountNumberDisplay, view.AccountIndustryDisplay)
	s.out.printf("types: %s\n", optionLabels(view.TypeOptions))
	s.out.printf("families: %s\n", optionLabels(view.FamilyOptions))
	if len(view.Items) == 0 {
		s.out.printf("no items\n")
	}
	for _, item := range view.Items {
		s.out.printf("  %-36s  %-24s %10s  %s / %s\n",
			item.ID, item.Name, item.Price.StringFixed(2), displayName(item.Type), displayName(item.Family))
	}
	s.out.printf("%s\n", statusLine(view))
}

func (s *shell) printCart() {
	view := s.tool.View()
	s.out.printf("%s\n", view.CartLabel)
	for _, line := range view.Cart {
		s.out.printf("  %-24s x%-3d %10s\n", line.Name, line.Quantity, line.LineTotal().StringFixed(2))
	}
	s.out.printf("  total %s\n", view.CartTotal.StringFixed(2))
}

func (s *shell) printDetails() {
	view := s.tool.View()
	if view.SelectedItem == nil {
		s.out.printf("item not in the current listing\n")
		return
	}
	item := view.SelectedItem
	s.out.printf("%s (%s)\n  price: %s\n  type: %s\n  family: %s\n  description: %s\n  image: %s\n",
		item.Name, item.ID, item.Price.StringFixed(2),
		displayName(item.Type), displayName(item.Family),
		displayName(item.Description), displayName(item.ImageURL))
}

func (s *shell) printStats() error {
	families, err := s.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	counts := remoteCallCounts(families)
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	if len(ops) == 0 {
		s.out.printf("no remote calls yet\n")
	}
	for _, op := range ops {
		c := counts[op]
		s.out.printf("  %-16s ok=%d failed=%d stale=%d\n", op, c.success, c.failure, c.stale)
	}
	return nil
}

type callCounts struct {
	success, failure, stale int
}

func remoteCallCounts(families []*dto.MetricFamily) map[string]*callCounts {
	counts := map[string]*callCounts{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			op := labelValue(metric, "operation")
			if op == "" || metric.GetCounter() == nil {
				continue
			}
			entry, ok := counts[op]
			if !ok {
				entry = &callCounts{}
				counts[op] = entry
			}
			value := int(metric.GetCounter().GetValue())
			switch family.GetName() {
			case "remote_call_success":
				entry.success = value
			case "remote_call_failure":
				entry.failure = value
			case "remote_call_stale":
				entry.stale = value
			}
		}
	}
	return counts
}

func labelValue(metric *dto.Metric, name string) string {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name {
			return pair.GetValue()
		}
	}
	return ""
}

func filterArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("missing value (use all to clear)")
	}
	value := strings.Join(args, " ")
	if strings.EqualFold(value, "all") {
		return "", nil
	}
	return value, nil
}

// parseFields turns key=value arguments into record fields. Values stay
// strings; the client converts price.
func parseFields(args []string) (purchasetool.RecordFields, error) {
	fields := purchasetool.RecordFields{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		fields[key] = value
	}
	if fields.Name() == "" {
		return nil, fmt.Errorf("name is required")
	}
	return fields, nil
}

// splitArgs splits on whitespace and honours double quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}

func optionLabels(options []purchasetool.FilterOption) string {
	labels := make([]string, 0, len(options))
	for _, option := range options {
		labels = append(labels, option.Label)
	}
	return strings.Join(labels, ", ")
}

func displayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
