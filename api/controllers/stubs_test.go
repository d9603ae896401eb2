package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/itempurchase/api/middleware"
	"github.com/angelmondragon/itempurchase/internal/accounts"
	"github.com/angelmondragon/itempurchase/internal/items"
	"github.com/angelmondragon/itempurchase/internal/purchases"
	"github.com/angelmondragon/itempurchase/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: io.Discard})
}

type stubItemsService struct {
	listFilters items.ListFilters
	list        []items.ItemDTO
	options     *items.FilterOptionsDTO
	createUser  uuid.UUID
	createInput items.CreateItemInput
	created     *items.ItemDTO
	attachID    uuid.UUID
	attachURL   string
	err         error
}

func (s *stubItemsService) ListItems(ctx context.Context, filters items.ListFilters) ([]items.ItemDTO, error) {
	s.listFilters = filters
	return s.list, s.err
}

func (s *stubItemsService) FilterOptions(ctx context.Context) (*items.FilterOptionsDTO, error) {
	return s.options, s.err
}

func (s *stubItemsService) CreateItem(ctx context.Context, userID uuid.UUID, input items.CreateItemInput) (*items.ItemDTO, error) {
	s.createUser = userID
	s.createInput = input
	return s.created, s.err
}

func (s *stubItemsService) AttachImage(ctx context.Context, itemID uuid.UUID, imageURL string) (*items.ItemDTO, error) {
	s.attachID = itemID
	s.attachURL = imageURL
	return &items.ItemDTO{ID: itemID, ImageURL: &imageURL}, s.err
}

type stubImagesService struct {
	query string
	url   string
	err   error
}

func (s *stubImagesService) FindImageURL(ctx context.Context, query string) (string, error) {
	s.query = query
	return s.url, s.err
}

type stubPurchasesService struct {
	userID uuid.UUID
	input  purchases.CreatePurchaseInput
	out    *purchases.PurchaseDTO
	err    error
}

func (s *stubPurchasesService) CreatePurchase(ctx context.Context, userID uuid.UUID, input purchases.CreatePurchaseInput) (*purchases.PurchaseDTO, error) {
	s.userID = userID
	s.input = input
	return s.out, s.err
}

type stubAccountsService struct {
	account *accounts.AccountDTO
	user    *accounts.UserDTO
	err     error
}

func (s *stubAccountsService) GetAccount(ctx context.Context, accountID uuid.UUID) (*accounts.AccountDTO, error) {
	return s.account, s.err
}

func (s *stubAccountsService) CurrentUser(ctx context.Context, userID uuid.UUID) (*accounts.UserDTO, error) {
	return s.user, s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// newRequest builds a request with an optional authenticated user and chi URL params.
func newRequest(method, target, body string, userID *uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if userID != nil {
		ctx = middleware.WithUserID(ctx, userID.String())
	}
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}
