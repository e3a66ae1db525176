// Package pagination parses pageSize/pageToken query parameters and slices
// ordered listings with opaque keyset tokens.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize    = 50
	DefaultMaxPageSize = 100
)

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid pageSize")
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// Cursor marks the last item of the previous page by its key.
type Cursor struct {
	After string `json:"after"`
}

// Params is the parsed request.
type Params struct {
	PageSize int
	Cursor   Cursor
}

// Options bound the accepted page size.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FromRequest reads pageSize and pageToken. Sizes above the maximum are clamped.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	query := r.URL.Query()
	size, err := pageSize(query.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}
	cursor, err := DecodeToken(query.Get("pageToken"))
	if err != nil {
		return Params{}, err
	}
	return Params{PageSize: size, Cursor: cursor}, nil
}

func pageSize(raw string, opts Options) (int, error) {
	maxSize := opts.MaxPageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	fallback := opts.DefaultPageSize
	if fallback <= 0 {
		fallback = DefaultPageSize
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return min(fallback, maxSize), nil
	}
	value, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	case value <= 0:
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	return min(value, maxSize), nil
}

// EncodeToken renders cursor as a URL-safe token; an empty cursor yields "".
func EncodeToken(cursor Cursor) string {
	if cursor.After == "" {
		return ""
	}
	data, _ := json.Marshal(cursor)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var cursor Cursor
	if err := json.Unmarshal(decoded, &cursor); err != nil || cursor.After == "" {
		return Cursor{}, ErrInvalidPageToken
	}
	return cursor, nil
}

// Page returns the items following the cursor, at most PageSize of them, and
// the cursor for the next page (empty on the last page). Items must be sorted
// by descending key. When the cursor's item has left the listing the page
// resumes at the first key that sorts below it.
func Page[T any](items []T, params Params, key func(T) string) ([]T, Cursor) {
	start := 0
	if after := params.Cursor.After; after != "" {
		start = len(items)
		for i, item := range items {
			k := key(item)
			if k == after {
				start = i + 1
				break
			}
			if k < after {
				start = i
				break
			}
		}
	}
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	end := min(start+size, len(items))
	page := items[start:end]
	if end == len(items) || len(page) == 0 {
		return page, Cursor{}
	}
	return page, Cursor{After: key(page[len(page)-1])}
}
