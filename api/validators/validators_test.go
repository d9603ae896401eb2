package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

type lineBody struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type purchaseBody struct {
	AccountID string     `json:"account_id" validate:"required,uuid"`
	Lines     []lineBody `json:"lines" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	body := `{"account_id":"nope","lines":[{"item_id":"","quantity":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dest purchaseBody
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	for _, field := range []string{"purchaseBody.account_id", "purchaseBody.lines[0].item_id", "purchaseBody.lines[0].quantity"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s in details %v", field, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"account_id":"x","extra":1}`))
	var dest purchaseBody
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueryStringTrimsAndTruncates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=%20%20lamp%20shade%20", nil)
	if got := QueryString(req, "search", 4); got != "lamp" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := QueryString(req, "missing", 10); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}

	spaced := httptest.NewRequest(http.MethodGet, "/?search=desk%20%20%20%20lamp", nil)
	if got := QueryString(spaced, "search", 0); got != "desk lamp" {
		t.Fatalf("expected inner whitespace collapsed, got %q", got)
	}

	accented := httptest.NewRequest(http.MethodGet, "/?search=%C3%A9t%C3%A9%20lamp", nil)
	if got := QueryString(accented, "search", 3); got != "été" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemId", id.String())
	got, err := ParseUUIDParam(req, "itemId")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s err=%v", id, got, err)
	}

	bad := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "itemId", "abc")
	if _, err := ParseUUIDParam(bad, "itemId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func withParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}
