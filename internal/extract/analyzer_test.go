package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/core"
)

func TestAnalyzeProducesAllSignalGroups(t *testing.T) {
	probe := &core.DomainProbe{
		Domain:  "example.com",
		RootURL: "https://example.com",
		Pages: []core.PageResult{
			page("https://example.com/", `<html><head>
				<title>Example Dental - Home</title>
				<meta name="generator" content="WordPress 5.2" />
			</head><body>
				<a href="tel:555-0100">Call</a>
				<img src="http://cdn.example.com/logo.png">
				<form action="/contact"></form>
				Warning: include(): boom in wp-content/themes
			</body></html>`),
			{URL: "https://example.com/blog", StatusCode: 404, Body: "gone"},
		},
	}

	signals := NewAnalyzer(zap.NewNop()).Analyze(probe)
	require.NotNil(t, signals)

	assert.Equal(t, "WordPress", signals.Tech.CMS)
	assert.Equal(t, "5.2", signals.Tech.WPVersion)
	assert.True(t, signals.Security.MixedContent)
	assert.True(t, signals.SEO.MetaDescMissing)
	assert.NotEmpty(t, signals.Errors)
	assert.Equal(t, "555-0100", signals.Contact.Phone)
	assert.True(t, signals.Contact.Form)
	assert.Empty(t, signals.Spam)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	probe := &core.DomainProbe{
		Domain: "example.com",
		Pages: []core.PageResult{
			page("https://example.com/", `<html><head><title>Acme</title></head>
				<body>buy now! limited time offer <img src="http://x.test/a.png"></body></html>`),
		},
	}

	a := NewAnalyzer(zap.NewNop())
	first := a.Analyze(probe)
	second := a.Analyze(probe)
	assert.Equal(t, first, second)
}

func TestAnalyzeEmptyProbe(t *testing.T) {
	signals := NewAnalyzer(zap.NewNop()).Analyze(&core.DomainProbe{Domain: "example.com"})
	require.NotNil(t, signals)
	assert.Empty(t, signals.Tech.CMS)
	assert.Empty(t, signals.Errors)
	assert.Empty(t, signals.Spam)
}
