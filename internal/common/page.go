package common

import (
	"fmt"
	"net/url"
)

// FirstCursor is the page token every paginated collection starts from.
const FirstCursor = "1"

// Page is one page of a Django-style paginated collection.
type Page[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// NextCursor extracts the page token from an absolute next URL.
// A missing next URL, or one without a page parameter, ends the collection.
func NextCursor(next *string) (string, bool, error) {
	if next == nil || *next == "" {
		return "", false, nil
	}
	u, err := url.Parse(*next)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse next url: %w", err)
	}
	page := u.Query().Get("page")
	if page == "" {
		return "", false, nil
	}
	return page, true, nil
}
