package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSampleBrokenLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/dead") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body := fmt.Sprintf(`<html><body>
		<a href="%s/alive">Alive</a>
		<a href="%s/dead">Dead</a>
		<a href="%s/dead">Dead duplicate</a>
		<a href="https://elsewhere.example/off-host">External</a>
		<a href="mailto:info@example.com">Mail</a>
		<a href="#section">Anchor</a>
	</body></html>`, srv.URL, srv.URL, srv.URL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)

	c := New(testFetchConfig(), zap.NewNop())
	broken := c.SampleBrokenLinks(context.Background(), "127.0.0.1", doc)
	assert.Equal(t, 1, broken)
}

func TestSampleBrokenLinksSampleCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, `<a href="%s/p%d">link</a>`, srv.URL, i)
	}
	b.WriteString("</body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)

	c := New(testFetchConfig(), zap.NewNop())
	broken := c.SampleBrokenLinks(context.Background(), "127.0.0.1", doc)
	assert.Equal(t, 10, broken)
}

func TestSampleBrokenLinksNilDoc(t *testing.T) {
	c := New(testFetchConfig(), zap.NewNop())
	assert.Equal(t, 0, c.SampleBrokenLinks(context.Background(), "example.com", nil))
}
