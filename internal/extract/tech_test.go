package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webrenew/leadscout/internal/core"
)

func page(url, body string) core.PageResult {
	return core.PageResult{URL: url, StatusCode: 200, Body: body}
}

func TestTechnologyWordPressFingerprint(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `
			<meta name="generator" content="WordPress 5.4.2" />
			<script src="/wp-includes/js/jquery/jquery.min.js?ver=1.12.4"></script>
		`),
	}

	info := Technology(pages)
	assert.Equal(t, "WordPress", info.CMS)
	assert.Equal(t, "5.4.2", info.WPVersion)
	assert.Equal(t, "1.12", info.JQueryVersion)
}

func TestTechnologyFirstVersionWins(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `<meta name="generator" content="WordPress 5.4" />`),
		page("https://example.com/about", `<meta name="generator" content="WordPress 6.2" />`),
	}

	info := Technology(pages)
	assert.Equal(t, "5.4", info.WPVersion)
}

func TestTechnologyExposedEndpoints(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/readme.html", "wordpress readme"),
		page("https://example.com/wp-json/", `{"name":"wordpress site"}`),
	}

	info := Technology(pages)
	assert.True(t, info.ReadmeAccessible)
	assert.True(t, info.WPJSONAccessible)

	// A blocked readme does not count.
	blocked := []core.PageResult{
		{URL: "https://example.com/readme.html", StatusCode: 403, Body: "forbidden wordpress"},
	}
	assert.False(t, Technology(blocked).ReadmeAccessible)
}

func TestTechnologyPHPBanner(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `Warning: include(): failed opening stream in /var/www/html/index.php`),
	}
	assert.True(t, Technology(pages).PHPBanner)

	clean := []core.PageResult{page("https://example.com/", "<html>all good</html>")}
	assert.False(t, Technology(clean).PHPBanner)
}

func TestTechnologySkipsFailedPages(t *testing.T) {
	pages := []core.PageResult{
		{URL: "https://example.com/", StatusCode: 500, Body: "wordpress wp-content"},
		{URL: "https://example.com/about", StatusCode: 0, Body: ""},
	}
	info := Technology(pages)
	assert.Empty(t, info.CMS)
}

func TestPageErrors(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `
			There has been a critical error on this website.
			Warning: mysqli_connect() failed
			Deprecated: create_function is deprecated
		`),
	}

	errs := PageErrors(pages)
	assert.Len(t, errs, 3)
	assert.Contains(t, errs[0], "WordPress critical error")
	assert.Contains(t, errs[1], "PHP error")
}

func TestPageErrorsCapPerPattern(t *testing.T) {
	body := ""
	for i := 0; i < 10; i++ {
		body += "Warning: something broke\n"
	}
	errs := PageErrors([]core.PageResult{page("https://example.com/", body)})
	assert.Len(t, errs, 3)
}
