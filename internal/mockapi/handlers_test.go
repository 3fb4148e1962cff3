package mockapi

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
)

func uploadHeader(t *testing.T, filename, contentType string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() = %v", err)
	}
	part.Write([]byte("data"))
	mw.Close()

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm() = %v", err)
	}
	return form.File["images"][0]
}

func TestStoreFileClassifiesUploads(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        media.Type
		wantCType   string // empty when it depends on the system mime table
	}{
		{"clip.mp4", "video/mp4", media.TypeVideo, "video/mp4"},
		{"clip.mov", "application/octet-stream", media.TypeVideo, ""},
		{"blob", "video/webm", media.TypeVideo, "video/webm"},
		{"photo.png", "image/png", media.TypeImage, "image/png"},
	}
	s := New(Options{})
	for _, tt := range tests {
		p, typ, err := s.storeFile(uploadHeader(t, tt.filename, tt.contentType), "posts")
		if err != nil {
			t.Fatalf("storeFile(%s) = %v", tt.filename, err)
		}
		if typ != tt.want {
			t.Errorf("storeFile(%s) type = %q, want %q", tt.filename, typ, tt.want)
		}
		obj, err := s.store.Media(p)
		if err != nil {
			t.Fatalf("Media(%s) = %v", p, err)
		}
		if tt.wantCType != "" && obj.contentType != tt.wantCType {
			t.Errorf("storeFile(%s) content type = %q, want %q", tt.filename, obj.contentType, tt.wantCType)
		}
	}
}
