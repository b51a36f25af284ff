package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordingTransport struct {
	calls int
}

func (r *recordingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	r.calls++
	return nil, errors.New("unexpected network call")
}

func TestExtractSkipsOffDomainLinks(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{}
	e := New(&http.Client{Transport: transport}, nil)

	text := e.Extract(context.Background(), "https://elsewhere.org/story", "example.com")
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no fetch attempt, saw %d calls", transport.calls)
	}
}

func TestExtractPicksDensestContainer(t *testing.T) {
	t.Parallel()

	page := `<html><head><style>body { color: red; }</style></head><body>
	<script>var tracking = "noise";</script>
	<nav>Home | About | Contact</nav>
	<article>Short teaser.</article>
	<div class="post-content">This is the actual readable body of the article,
	long enough to win the candidate comparison by a comfortable margin.</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	e := New(server.Client(), nil)
	text := e.Extract(context.Background(), server.URL+"/story", server.URL)

	if !strings.Contains(text, "actual readable body") {
		t.Fatalf("expected post-content text, got %q", text)
	}
	if strings.Contains(text, "tracking") || strings.Contains(text, "color: red") {
		t.Fatalf("script/style leaked into text: %q", text)
	}
	if strings.Contains(text, "  ") || strings.Contains(text, "\n") {
		t.Fatalf("whitespace not collapsed: %q", text)
	}
}

func TestExtractFallsBackToBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Just a paragraph.</p></body></html>`))
	}))
	defer server.Close()

	e := New(server.Client(), nil)
	text := e.Extract(context.Background(), server.URL+"/p", server.URL)

	if text != "Just a paragraph." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractFetchFailureYieldsEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	e := New(server.Client(), nil)
	if text := e.Extract(context.Background(), server.URL+"/story", server.URL); text != "" {
		t.Fatalf("expected empty text on fetch failure, got %q", text)
	}
}

func TestRootDomain(t *testing.T) {
	t.Parallel()

	if got := rootDomain("feeds.example.co"); got != "example.co" {
		t.Fatalf("unexpected root domain: %q", got)
	}
	if !sameRootDomain("https://news.example.com/a", "example.com") {
		t.Fatal("expected subdomain to match its root")
	}
	if sameRootDomain("https://evil.org/a", "example.com") {
		t.Fatal("expected different roots to mismatch")
	}
}
