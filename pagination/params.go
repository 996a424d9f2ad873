package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when the limit parameter is absent or
// not a member of the allowed set.
const DefaultLimit = 10

// allowedLimits is the closed set of page sizes. Values outside the set
// fall back to DefaultLimit rather than erroring; listings must stay
// usable with sloppy clients.
var allowedLimits = map[int]struct{}{10: {}, 20: {}, 50: {}}

// OffsetParams are the normalized inputs of the offset paginator.
type OffsetParams struct {
	Page   int
	Limit  int
	Search string
}

// CursorParams are the normalized inputs of the keyset paginator. A nil
// Cursor means "from the beginning".
type CursorParams struct {
	Limit  int
	Cursor *Cursor
	Search string
}

// CursorModeRequested reports whether the request selected cursor mode.
// The mere presence of the parameter selects it, even when empty.
func CursorModeRequested(query url.Values) bool {
	return query.Has("cursor")
}

// ParseOffset normalizes offset-mode parameters. Invalid page or limit
// values silently fall back to their defaults.
func ParseOffset(query url.Values) OffsetParams {
	return OffsetParams{
		Page:   normalizePage(query.Get("page")),
		Limit:  NormalizeLimit(query.Get("limit")),
		Search: strings.TrimSpace(query.Get("search")),
	}
}

// ParseCursor normalizes cursor-mode parameters. An empty cursor parameter
// means "from the beginning"; a malformed one is a validation error.
func ParseCursor(query url.Values) (CursorParams, error) {
	params := CursorParams{
		Limit:  NormalizeLimit(query.Get("limit")),
		Search: strings.TrimSpace(query.Get("search")),
	}

	token := strings.TrimSpace(query.Get("cursor"))
	if token == "" {
		return params, nil
	}

	cursor, err := DecodeCursor(token)
	if err != nil {
		return CursorParams{}, err
	}
	params.Cursor = &cursor
	return params, nil
}

// NormalizeLimit maps a raw limit parameter onto the allowed set.
func NormalizeLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLimit
	}
	if _, ok := allowedLimits[limit]; !ok {
		return DefaultLimit
	}
	return limit
}

func normalizePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
