package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/itempurchase/api/responses"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	pkgredis "github.com/angelmondragon/itempurchase/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	purchaseReplayTTL = 7 * 24 * time.Hour
	itemReplayTTL     = 24 * time.Hour
)

// idempotencyRule selects the writes whose responses are recorded. Patterns
// are matched segment by segment against the request path; "*" matches one
// segment. Optional rules only apply when the client sends a key.
type idempotencyRule struct {
	method   string
	pattern  string
	ttl      time.Duration
	optional bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, pattern: "/api/v1/purchases", ttl: purchaseReplayTTL},
	{method: http.MethodPost, pattern: "/api/v1/items", ttl: itemReplayTTL, optional: true},
	{method: http.MethodPut, pattern: "/api/v1/items/*/image", ttl: itemReplayTTL, optional: true},
}

// storedResponse is what gets replayed for a repeated key. Body is base64
// encoded by encoding/json.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency records the response of matching writes under the caller's
// Idempotency-Key and replays it for retries with the same body. A nil store
// disables the middleware. Server errors are not recorded so they can be retried.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		guard := &idempotencyGuard{store: store, logg: logg, next: next}
		return http.HandlerFunc(guard.serve)
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
	next  http.Handler
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request) {
	rule, ok := matchRule(r.Method, r.URL.Path)
	if !ok {
		g.next.ServeHTTP(w, r)
		return
	}

	clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if clientKey == "" {
		if rule.optional {
			g.next.ServeHTTP(w, r)
			return
		}
		g.fail(w, r, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		g.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	ctx := r.Context()
	fingerprint := fingerprintBody(body)
	key := g.store.IdempotencyKey(replayScope(r), clientKey)

	previous, err := g.lookup(r, key)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	if previous != nil {
		if previous.Fingerprint != fingerprint {
			g.fail(w, r, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
			return
		}
		previous.replay(w)
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	g.next.ServeHTTP(capture, r)

	status := capture.statusCode()
	if status >= http.StatusInternalServerError {
		return
	}
	payload, err := json.Marshal(storedResponse{
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
		Fingerprint: fingerprint,
	})
	if err != nil {
		g.logError(r, "marshal idempotency record", err)
		return
	}
	if _, err := g.store.SetNX(ctx, key, string(payload), rule.ttl); err != nil {
		g.logError(r, "persist idempotency record", err)
	}
}

// lookup returns the stored response for key, or nil when there is none.
func (g *idempotencyGuard) lookup(r *http.Request, key string) (*storedResponse, error) {
	raw, err := g.store.Get(r.Context(), key)
	if errors.Is(err, pkgredis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &stored, nil
}

func (g *idempotencyGuard) fail(w http.ResponseWriter, r *http.Request, err error) {
	responses.WriteError(r.Context(), g.logg, w, err)
}

func (g *idempotencyGuard) logError(r *http.Request, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(r.Context(), msg, err)
	}
}

func (s *storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

// replayScope keys records per user and endpoint so keys never collide across them.
func replayScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func matchRule(method, path string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && matchPattern(rule.pattern, path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func matchPattern(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, segment := range want {
		if got[i] == "" {
			return false
		}
		if segment != "*" && segment != got[i] {
			return false
		}
	}
	return true
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
