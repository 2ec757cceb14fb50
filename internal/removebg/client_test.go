package removebg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

func solidBuffer(t *testing.T, w, h int, c color.NRGBA) *imaging.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	buf, err := imaging.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return buf
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return out.Bytes()
}

func TestClient_Remove(t *testing.T) {
	reply := pngBytes(t, 8, 6, color.NRGBA{10, 20, 30, 0})

	var (
		gotKey    string
		gotAccept string
		gotSize   string
		gotUpload image.Image
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		gotKey = r.Header.Get("X-Api-Key")
		gotAccept = r.Header.Get("Accept")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm failed: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotSize = r.FormValue("size")

		f, hdr, err := r.FormFile("image_file")
		if err != nil {
			t.Errorf("missing image_file: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		if hdr.Filename != "image.png" {
			t.Errorf("filename: got %q, want image.png", hdr.Filename)
		}
		gotUpload, err = png.Decode(f)
		if err != nil {
			t.Errorf("upload is not a PNG: %v", err)
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(reply)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", Endpoint: srv.URL})
	out, err := c.Remove(context.Background(), solidBuffer(t, 8, 6, color.NRGBA{200, 100, 50, 255}))
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("X-Api-Key: got %q, want secret", gotKey)
	}
	if gotAccept != "image/png" {
		t.Errorf("Accept: got %q, want image/png", gotAccept)
	}
	if gotSize != "auto" {
		t.Errorf("size field: got %q, want auto", gotSize)
	}
	if gotUpload == nil || gotUpload.Bounds().Dx() != 8 || gotUpload.Bounds().Dy() != 6 {
		t.Errorf("uploaded image: got %v", gotUpload)
	}

	if out.Width() != 8 || out.Height() != 6 {
		t.Errorf("result dimensions: got %dx%d, want 8x6", out.Width(), out.Height())
	}
	if got := out.At(3, 3); got[3] != 0 {
		t.Errorf("result alpha: got %d, want 0", got[3])
	}
}

func TestClient_StatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json errors", http.StatusForbidden, `{"errors":[{"title":"API Key invalid"}]}`, "API Key invalid"},
		{"plain text", http.StatusPaymentRequired, "  out of credits \n", "out of credits"},
		{"empty body", http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", Endpoint: srv.URL})
			_, err := c.Remove(context.Background(), solidBuffer(t, 2, 2, color.NRGBA{1, 2, 3, 255}))
			if !errors.Is(err, ErrRemovalFailed) {
				t.Fatalf("got %v, want ErrRemovalFailed", err)
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("got %v, want a *StatusError in the chain", err)
			}
			if se.StatusCode != tt.status {
				t.Errorf("StatusCode: got %d, want %d", se.StatusCode, tt.status)
			}
			if se.Message != tt.wantMsg {
				t.Errorf("Message: got %q, want %q", se.Message, tt.wantMsg)
			}
		})
	}
}

func TestClient_NoAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.Remove(context.Background(), solidBuffer(t, 2, 2, color.NRGBA{A: 255}))
	if !errors.Is(err, ErrRemovalFailed) {
		t.Errorf("got %v, want ErrRemovalFailed", err)
	}
	if called {
		t.Error("request sent without an API key")
	}
}

func TestClient_InvalidResponseImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		io.WriteString(w, "definitely not a png")
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", Endpoint: srv.URL})
	_, err := c.Remove(context.Background(), solidBuffer(t, 2, 2, color.NRGBA{A: 255}))
	if !errors.Is(err, ErrRemovalFailed) {
		t.Fatalf("got %v, want ErrRemovalFailed", err)
	}
	if !errors.Is(err, imaging.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat in the chain", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{APIKey: "k", Endpoint: srv.URL})
	buf := solidBuffer(t, 2, 2, color.NRGBA{A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Remove(ctx, buf)
		errc <- err
	}()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrRemovalFailed) {
			t.Errorf("got %v, want ErrRemovalFailed", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled in the chain", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Remove did not return after cancellation")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{APIKey: "k", Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Remove(context.Background(), solidBuffer(t, 2, 2, color.NRGBA{A: 255}))
	if !errors.Is(err, ErrRemovalFailed) {
		t.Errorf("got %v, want ErrRemovalFailed", err)
	}
}

func TestStatusError_Error(t *testing.T) {
	e := &StatusError{StatusCode: 429}
	if !strings.Contains(e.Error(), "429") {
		t.Errorf("got %q", e.Error())
	}
	e.Message = "rate limited"
	if !strings.HasSuffix(e.Error(), ": rate limited") {
		t.Errorf("got %q", e.Error())
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	if c.endpoint != DefaultEndpoint {
		t.Errorf("endpoint: got %s", c.endpoint)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout: got %v", c.http.Timeout)
	}
}
