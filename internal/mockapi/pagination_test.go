package mockapi

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	r := httptest.NewRequest("GET", "http://api.risus.test/feed/5/get-reposts/?is_repost=true&page=2", nil)
	page, err := paginate(r, items, 2)
	if err != nil {
		t.Fatalf("paginate() = %v", err)
	}
	if len(page.Results) != 2 || page.Results[0] != 3 || page.Count != 5 {
		t.Fatalf("paginate() = %+v", page)
	}
	if page.Next == nil || *page.Next != "http://api.risus.test/feed/5/get-reposts/?is_repost=true&page=3" {
		t.Fatalf("Next = %v", page.Next)
	}
	if page.Previous == nil || *page.Previous != "http://api.risus.test/feed/5/get-reposts/?is_repost=true" {
		t.Fatalf("Previous = %v", page.Previous)
	}

	r = httptest.NewRequest("GET", "http://api.risus.test/feed/?page=3", nil)
	page, _ = paginate(r, items, 2)
	if page.Next != nil || len(page.Results) != 1 {
		t.Fatalf("last page = %+v", page)
	}
}

func TestPaginateRejectsBadPages(t *testing.T) {
	for _, q := range []string{"page=0", "page=abc", "page=4"} {
		r := httptest.NewRequest("GET", "http://api.risus.test/feed/?"+q, nil)
		if _, err := paginate(r, []int{1, 2, 3}, 1); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("paginate(%s) = %v, want ErrInvalidPage", q, err)
		}
	}

	r := httptest.NewRequest("GET", "http://api.risus.test/notifications/", nil)
	page, err := paginate(r, []int{}, 10)
	if err != nil || page.Results == nil || page.Count != 0 {
		t.Fatalf("empty collection = (%+v, %v)", page, err)
	}
}
