package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

// QueryString returns the query value with surrounding and repeated inner
// whitespace collapsed, truncated to maxLen runes. maxLen <= 0 disables the limit.
func QueryString(r *http.Request, key string, maxLen int) string {
	value := strings.Join(strings.Fields(r.URL.Query().Get(key)), " ")
	if maxLen <= 0 || utf8.RuneCountInString(value) <= maxLen {
		return value
	}
	runes := []rune(value)
	return strings.TrimSpace(string(runes[:maxLen]))
}

// ParseUUIDParam reads a chi URL parameter as a uuid.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": name})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
