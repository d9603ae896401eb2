package unsplash

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

func TestClientSearchPhotosRequest(t *testing.T) {
	const expectedURL = "http://unsplash.test/search/photos?per_page=1&query=red+chair"
	respBody := `{"results":[{"id":"p1","alt_description":"a red chair","urls":{"regular":"https://img.test/p1?w=1080","small":"https://img.test/p1?w=400"},"user":{"name":"Jo"}}]}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://unsplash.test/"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	photos, err := client.SearchPhotos(context.Background(), " red chair ", 1)
	if err != nil {
		t.Fatalf("search photos: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("Authorization") != "Client-ID test-key" {
		t.Fatalf("authorization header missing, got %q", capturedHeaders.Get("Authorization"))
	}
	if capturedHeaders.Get("Accept-Version") != acceptVersion {
		t.Fatalf("unexpected accept version %q", capturedHeaders.Get("Accept-Version"))
	}
	if len(photos) != 1 || photos[0].RegularURL != "https://img.test/p1?w=1080" || photos[0].Author != "Jo" {
		t.Fatalf("unexpected photos %+v", photos)
	}
}

func TestClientFirstPhotoURLEmptyResults(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"results":[]}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("k", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	url, err := client.FirstPhotoURL(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("first photo url: %v", err)
	}
	if url != "" {
		t.Fatalf("expected empty url, got %q", url)
	}
}

func TestClientSearchPhotosErrors(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected missing key error")
	}

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"errors":["OAuth error"]}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("k", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SearchPhotos(context.Background(), "chair", 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "photo search request failed") {
		t.Fatalf("unexpected error message %v", err)
	}

	_, err = client.SearchPhotos(context.Background(), " ", 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var nilClient *Client
	if _, err := nilClient.FirstPhotoURL(context.Background(), "x"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error from nil client, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
