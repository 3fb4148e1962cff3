package notification

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
)

func TestListFollowsNextURLs(t *testing.T) {
	var srv *httptest.Server
	var pages []string
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			fmt.Fprintf(w, `{"count":3,"next":"%s/notifications/?page=2","previous":null,"results":[{"id":1,"type":"like","is_read":false},{"id":2,"type":"follow","is_read":true}]}`, srv.URL)
		case "2":
			fmt.Fprintf(w, `{"count":3,"next":null,"previous":"%s/notifications/?page=1","results":[{"id":3,"type":"repost","is_read":false}]}`, srv.URL)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	pager := NewService(NewHTTPRepository(client)).List()
	if err := pager.FetchAll(context.Background(), 0); err != nil {
		t.Fatalf("FetchAll() = %v", err)
	}

	if fmt.Sprint(pages) != "[1 2]" {
		t.Fatalf("pages requested = %v", pages)
	}
	items := pager.Items()
	if len(items) != 3 || items[2].Type != TypeRepost {
		t.Fatalf("Items() = %+v", items)
	}
	if n := UnreadCount(items); n != 2 {
		t.Fatalf("UnreadCount() = %d, want 2", n)
	}
}
