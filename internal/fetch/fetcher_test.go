package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tenderdesk/parser/internal/render"
	"github.com/tenderdesk/parser/pkg/models"
)

type stubRenderer struct {
	content    string
	statusCode int
	err        error
	calls      int
}

func (s *stubRenderer) Render(ctx context.Context, url, waitForSelector string) (*render.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &render.Response{Content: s.content, StatusCode: s.statusCode}, nil
}

func plausiblePage() string {
	return "<html><body>Организатор: ООО Ромашка" + strings.Repeat("x", 25000) + "</body></html>"
}

func TestFetch_DirectResultWins(t *testing.T) {
	page := plausiblePage()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	renderer := &stubRenderer{}
	f := New(renderer)

	result := f.Fetch(context.Background(), srv.URL, "")
	if result.Source != models.SourceDirect {
		t.Errorf("source = %q, expected direct", result.Source)
	}
	if result.HTML != page {
		t.Errorf("unexpected body, got %d bytes", len(result.HTML))
	}
	if renderer.calls != 0 {
		t.Errorf("renderer called %d times, expected 0", renderer.calls)
	}
}

func TestFetch_SuspiciousBodyFallsBackToRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>loading</body></html>"))
	}))
	defer srv.Close()

	rendered := plausiblePage()
	renderer := &stubRenderer{content: rendered, statusCode: 200}
	f := New(renderer)

	result := f.Fetch(context.Background(), srv.URL, ".organizer-information")
	if result.Source != models.SourceRendered {
		t.Errorf("source = %q, expected rendered", result.Source)
	}
	if result.HTML != rendered {
		t.Errorf("unexpected body, got %d bytes", len(result.HTML))
	}
	if renderer.calls != 1 {
		t.Errorf("renderer called %d times, expected 1", renderer.calls)
	}
}

func TestFetch_Non200FallsBackToRender(t *testing.T) {
	page := plausiblePage()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	renderer := &stubRenderer{content: page + page, statusCode: 200}
	f := New(renderer)

	result := f.Fetch(context.Background(), srv.URL, "")
	if result.Source != models.SourceRendered {
		t.Errorf("source = %q, expected rendered after 403", result.Source)
	}
}

func TestFetch_SmallerRenderKeepsDirect(t *testing.T) {
	// The direct body is suspicious on size, but the render is even
	// smaller, so the direct body still wins.
	direct := "<html><body>Организатор " + strings.Repeat("x", 1000) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(direct))
	}))
	defer srv.Close()

	renderer := &stubRenderer{content: "<html></html>", statusCode: 200}
	f := New(renderer)

	result := f.Fetch(context.Background(), srv.URL, "")
	if result.Source != models.SourceDirect {
		t.Errorf("source = %q, expected direct", result.Source)
	}
	if result.HTML != direct {
		t.Error("expected the larger direct body to be kept")
	}
}

func TestFetch_RenderFailureDegradesToDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stub"))
	}))
	defer srv.Close()

	renderer := &stubRenderer{err: context.DeadlineExceeded}
	f := New(renderer)

	result := f.Fetch(context.Background(), srv.URL, "")
	if result == nil {
		t.Fatal("Fetch must never return nil")
	}
	if result.HTML != "stub" {
		t.Errorf("expected direct body to survive render failure, got %q", result.HTML)
	}
}

func TestDirectDialerBound(t *testing.T) {
	if directDialer.Timeout != connectTimeout {
		t.Fatalf("dial timeout = %v, expected %v", directDialer.Timeout, connectTimeout)
	}
}

func TestFetch_UnreachableHostYieldsEmptyResult(t *testing.T) {
	f := New(nil)
	result := f.Fetch(context.Background(), "http://127.0.0.1:1/none", "")
	if result == nil {
		t.Fatal("Fetch must never return nil")
	}
	if result.HTML != "" {
		t.Errorf("expected empty body, got %d bytes", len(result.HTML))
	}
}
