package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example Wire</title>
  <item>
    <title><![CDATA[Ben &amp; Jerry&#8217;s AI &#8211; a &#8220;deep&#8221; dive&#8230;]]></title>
    <link><![CDATA[https://example.com/articles/ai-deep-dive?a=1&amp;b=2]]></link>
    <pubDate>Mon, 06 Jan 2025 10:00:00 +0000</pubDate>
    <dc:creator><![CDATA[Jane Doe]]></dc:creator>
  </item>
  <item>
    <title>Plain item</title>
    <link>https://example.com/articles/plain</link>
  </item>
</channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://example.com/atom/1"/>
    <published>2025-01-06T10:00:00Z</published>
    <author><name>John Roe</name></author>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	t.Parallel()

	stubs, err := NewParser().Parse(rssDoc, "Example Wire")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}

	want := `Ben & Jerry's AI - a "deep" dive...`
	if stubs[0].Title != want {
		t.Fatalf("unexpected title: %q", stubs[0].Title)
	}
	if stubs[0].Creator != "Jane Doe" {
		t.Fatalf("unexpected creator: %q", stubs[0].Creator)
	}
	if stubs[0].Link != "https://example.com/articles/ai-deep-dive?a=1&b=2" {
		t.Fatalf("residual entity markup in link: %q", stubs[0].Link)
	}
	if stubs[0].PubDate != "Mon, 06 Jan 2025 10:00:00 +0000" {
		t.Fatalf("unexpected pubDate: %q", stubs[0].PubDate)
	}

	if stubs[1].Creator != "Unknown Author" {
		t.Fatalf("expected default creator, got %q", stubs[1].Creator)
	}
	if stubs[1].PubDate != "" {
		t.Fatalf("expected empty pubDate, got %q", stubs[1].PubDate)
	}
}

func TestParseAtom(t *testing.T) {
	t.Parallel()

	stubs, err := NewParser().Parse(atomDoc, "Example Atom")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(stubs))
	}
	if stubs[0].Title != "Atom entry" {
		t.Fatalf("unexpected title: %q", stubs[0].Title)
	}
	if stubs[0].Link != "https://example.com/atom/1" {
		t.Fatalf("unexpected link: %q", stubs[0].Link)
	}
	if stubs[0].Creator != "John Roe" {
		t.Fatalf("unexpected creator: %q", stubs[0].Creator)
	}
}

func TestParseEmptyChannel(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`

	stubs, err := NewParser().Parse(doc, "empty")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(stubs) != 0 {
		t.Fatalf("expected no stubs, got %d", len(stubs))
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := NewParser().Parse("this is not a feed", "broken"); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestFetcherStatusHandling(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(rssDoc))
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	ctx := context.Background()

	body, err := f.Fetch(ctx, server.URL+"/feed")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if body != rssDoc {
		t.Fatal("unexpected body")
	}

	if _, err := f.Fetch(ctx, server.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
