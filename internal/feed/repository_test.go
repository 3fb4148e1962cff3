package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

func newTestRepo(t *testing.T, h http.HandlerFunc) Repository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := api.NewClient(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	return NewHTTPRepository(c)
}

func TestRepostPageRequest(t *testing.T) {
	var gotPath, gotQuery string
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":3,"is_repost":true,"thread":12,"user":{"id":4,"username":"amy"}}]}`))
	})

	page, err := repo.RepostPage(context.Background(), 12, "2")
	if err != nil {
		t.Fatalf("RepostPage() = %v", err)
	}
	if gotPath != "/feed/12/get-reposts/" || gotQuery != "is_repost=true&page=2" {
		t.Fatalf("request = %s?%s", gotPath, gotQuery)
	}
	if len(page.Results) != 1 || page.Results[0].ThreadID() != 12 || page.Results[0].User.Username != "amy" {
		t.Fatalf("RepostPage() = %+v", page)
	}

	if _, err := repo.RepostPage(context.Background(), 0, "1"); !errors.Is(err, ErrNoThread) {
		t.Fatalf("RepostPage(0) = %v, want ErrNoThread", err)
	}
}

func TestFeedPageRequest(t *testing.T) {
	var gotURI string
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`{"count":0,"next":null,"previous":null,"results":[]}`))
	})
	if _, err := repo.FeedPage(context.Background(), "1"); err != nil {
		t.Fatalf("FeedPage() = %v", err)
	}
	if gotURI != "/feed/?page=1" {
		t.Fatalf("request = %s", gotURI)
	}
}

func TestCreateRepostMultipart(t *testing.T) {
	var thread, content, filename, body string
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/feed/create-repost/" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() = %v", err)
			return
		}
		thread, content = r.FormValue("thread"), r.FormValue("content")
		f, hdr, err := r.FormFile("images")
		if err == nil {
			filename = hdr.Filename
			b, _ := io.ReadAll(f)
			body = string(b)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":90,"is_repost":true,"thread":12}`))
	})

	req := &CreateRepostRequest{
		Thread:  12,
		Content: "same here",
		Images: []Attachment{{
			Name:     "pic.jpg",
			MimeType: "image/jpeg",
			Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("jpeg")), nil },
		}},
	}
	post, err := repo.CreateRepost(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateRepost() = %v", err)
	}
	if thread != "12" || content != "same here" || filename != "pic.jpg" || body != "jpeg" {
		t.Fatalf("form = thread %q content %q file %q body %q", thread, content, filename, body)
	}
	if post.ID != 90 || !post.IsRepost {
		t.Fatalf("CreateRepost() = %+v", post)
	}
}

func TestDeleteMapsNotFound(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/feed/5/" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found."}`))
	})

	err := repo.Delete(context.Background(), 5)
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("Delete() = %v, want ErrPostNotFound", err)
	}
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Not found." {
		t.Fatalf("Delete() lost the server message: %v", err)
	}
}

func TestLikeDecodesPartialResponse(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_likes":8}`))
	})
	resp, err := repo.Like(context.Background(), 3)
	if err != nil {
		t.Fatalf("Like() = %v", err)
	}
	if resp.IsLiked != nil || resp.TotalLikes == nil || *resp.TotalLikes != 8 {
		t.Fatalf("Like() = %+v", resp)
	}
}
