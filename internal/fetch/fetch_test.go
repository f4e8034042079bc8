package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greenhousePage = `<html><head><title>Jobs at Acme</title>
<meta property="og:site_name" content="Acme Corp"></head>
<body>
<nav>Home | Careers</nav>
<div class="app-title">Senior Go Engineer</div>
<div class="location">Remote, US</div>
<div class="job__description">
  <p>Build   distributed systems.</p>

  <p>Write Go every day.</p>
</div>
<div class="application--wrapper">Apply now form</div>
</body></html>`

func TestExtract_Greenhouse(t *testing.T) {
	p, err := Extract(greenhousePage, PlatformGreenhouse)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer", p.Title)
	assert.Equal(t, "Acme Corp", p.Company)
	assert.Equal(t, "Remote, US", p.Location)
	assert.Equal(t, "Build distributed systems.\nWrite Go every day.", p.Description)
	assert.NotContains(t, p.Description, "Apply now")
}

func TestExtract_GenericFallbacks(t *testing.T) {
	html := `<html><head><title>Backend Developer - Globex</title>
<meta name="description" content="Join Globex."></head><body><nav>menu</nav></body></html>`

	p, err := Extract(html, PlatformUnknown)
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer - Globex", p.Title)
	assert.Empty(t, p.Company)
	assert.Equal(t, "Join Globex.", p.Description)
}

func TestExtract_OpenGraphTitleWins(t *testing.T) {
	html := `<html><head><meta property="og:title" content="Data Engineer"></head>
<body><h1>Careers</h1><main>Pipelines.</main></body></html>`

	p, err := Extract(html, PlatformUnknown)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", p.Title)
	assert.Equal(t, "Pipelines.", p.Description)
}

func TestExtract_TruncatesDescription(t *testing.T) {
	html := "<html><body><main>" + strings.Repeat("word ", 400) + "</main></body></html>"

	p, err := Extract(html, PlatformUnknown)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p.Description, "..."))
	assert.LessOrEqual(t, len([]rune(p.Description)), maxDescription+3)
}

func TestPreviewer_Preview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>SRE</h1><article>Keep it up.</article></body></html>`))
	}))
	defer server.Close()

	p, err := NewPreviewer(nil).Preview(context.Background(), server.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/jobs/1", p.URL)
	assert.Equal(t, PlatformUnknown, p.Platform)
	assert.Equal(t, "SRE", p.Title)
	assert.Equal(t, "Keep it up.", p.Description)
}

func TestPreviewer_InvalidURL(t *testing.T) {
	for _, link := range []string{"", "not a url", "ftp://example.com/job"} {
		_, err := NewPreviewer(nil).Preview(context.Background(), link)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, link)
		assert.Equal(t, "invalid URL", fetchErr.Message)
	}
}

func TestPreviewer_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewPreviewer(&Options{UserAgent: "test"}).Preview(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP status 404")
}
