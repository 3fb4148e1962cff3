package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedSource = errors.New("unsupported media source")

// AssetRef is a reference to media bundled with the app; it has no URI
type AssetRef int

// Descriptor is the uniform shape for captured, picked and remote media
type Descriptor struct {
	URI      string `json:"uri"`
	Type     Type   `json:"type"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// Source is a normalized media source: either a descriptor or a bundled asset
type Source struct {
	Descriptor
	Asset AssetRef
}

func (s Source) IsAsset() bool { return s.Asset != 0 }

// Normalize accepts a bare URL string, an AssetRef, a Descriptor (value or pointer),
// a map with a "uri" key, or a slice of those (first element wins).
func Normalize(src interface{}) (Source, error) {
	switch v := src.(type) {
	case string:
		if v == "" {
			return Source{}, fmt.Errorf("%w: empty uri", ErrUnsupportedSource)
		}
		return Source{Descriptor: describe(Descriptor{URI: v})}, nil
	case AssetRef:
		return Source{Asset: v}, nil
	case Descriptor:
		return Normalize(&v)
	case *Descriptor:
		if v == nil || v.URI == "" {
			return Source{}, fmt.Errorf("%w: descriptor without uri", ErrUnsupportedSource)
		}
		return Source{Descriptor: describe(*v)}, nil
	case Source:
		return v, nil
	case map[string]interface{}:
		return fromMap(v)
	case []Descriptor:
		if len(v) == 0 {
			return Source{}, fmt.Errorf("%w: empty list", ErrUnsupportedSource)
		}
		return Normalize(v[0])
	case []interface{}:
		if len(v) == 0 {
			return Source{}, fmt.Errorf("%w: empty list", ErrUnsupportedSource)
		}
		return Normalize(v[0])
	case []map[string]interface{}:
		if len(v) == 0 {
			return Source{}, fmt.Errorf("%w: empty list", ErrUnsupportedSource)
		}
		return fromMap(v[0])
	default:
		return Source{}, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}

func fromMap(m map[string]interface{}) (Source, error) {
	uri, _ := m["uri"].(string)
	if uri == "" {
		return Source{}, fmt.Errorf("%w: object without uri", ErrUnsupportedSource)
	}
	d := Descriptor{URI: uri}
	if s, ok := m["type"].(string); ok {
		d.Type = Type(s)
	}
	if s, ok := m["mimeType"].(string); ok {
		d.MimeType = s
	}
	if s, ok := m["name"].(string); ok {
		d.Name = s
	}
	d.Width = intField(m["width"])
	d.Height = intField(m["height"])
	d.FileSize = int64(intField(m["fileSize"]))
	return Source{Descriptor: describe(d)}, nil
}

func intField(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// describe fills type, mime type and name where the caller left them blank
func describe(d Descriptor) Descriptor {
	if d.Type != TypeImage && d.Type != TypeVideo {
		d.Type = Classify(d.URI)
	}
	if d.Name == "" {
		d.Name = baseName(d.URI)
	}
	if d.MimeType == "" {
		d.MimeType = mime.TypeByExtension(strings.ToLower(path.Ext(d.Name)))
	}
	if d.MimeType == "" {
		if d.Type == TypeVideo {
			d.MimeType = "video/mp4"
		} else {
			d.MimeType = "image/jpeg"
		}
	}
	return d
}

func baseName(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// FromCapture describes a freshly captured file. Captures get a unique name so uploads never collide.
func FromCapture(filePath string, width, height int, size int64) Source {
	ext := strings.ToLower(path.Ext(filePath))
	d := describe(Descriptor{
		URI:      filePath,
		Name:     uuid.NewString() + ext,
		Width:    width,
		Height:   height,
		FileSize: size,
	})
	return Source{Descriptor: d}
}

// Open reads a local source (plain path or file:// URI) for upload
func (s Source) Open() (io.ReadCloser, error) {
	if s.IsAsset() {
		return nil, fmt.Errorf("%w: bundled assets cannot be uploaded", ErrUnsupportedSource)
	}
	p := s.URI
	if u, err := url.Parse(s.URI); err == nil {
		switch u.Scheme {
		case "file":
			p = u.Path
		case "http", "https":
			return nil, fmt.Errorf("%w: remote media cannot be uploaded", ErrUnsupportedSource)
		}
	}
	return os.Open(p)
}

// Fit scales width x height down to fit within maxW x maxH, keeping the aspect ratio.
// Media already inside the box, or with unknown size, is returned unchanged.
func Fit(width, height, maxW, maxH int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	scale := 1.0
	if maxW > 0 && width > maxW {
		scale = float64(maxW) / float64(width)
	}
	if maxH > 0 && float64(height)*scale > float64(maxH) {
		scale = float64(maxH) / float64(height)
	}
	if scale >= 1 {
		return width, height
	}
	w := int(float64(width)*scale + 0.5)
	h := int(float64(height)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
