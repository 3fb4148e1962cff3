package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

var ErrInvalidPage = errors.New("invalid page")

// paginate slices items the way the backend's page-number paginator does: next and
// previous are absolute URLs, and the link back to page 1 carries no page parameter.
func paginate[T any](r *http.Request, items []T, pageSize int) (common.Page[T], error) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return common.Page[T]{}, ErrInvalidPage
		}
		page = n
	}

	start := (page - 1) * pageSize
	if start > 0 && start >= len(items) {
		return common.Page[T]{}, ErrInvalidPage
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	out := common.Page[T]{
		Results: append([]T{}, items[start:end]...),
		Count:   len(items),
	}
	if end < len(items) {
		next := pageURL(r, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		out.Previous = &prev
	}
	return out, nil
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := baseURL(r) + r.URL.Path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}
