// Package macromicro talks to the MacroMicro chart upstream: it resolves
// chart identifiers from page URLs, fetches chart data through a forwarding
// proxy, locates and fetches CDN preview images, and extracts per-series
// latest values from the chart payload.
package macromicro

import (
	"regexp"
	"strings"
)

// chartURLPatterns are tried in order. The collections pattern captures the
// second digit group — the chart id, not the collection id.
var chartURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`macromicro\.me/charts/(\d+)`),
	regexp.MustCompile(`macromicro\.me/collections/\d+/[^/]+/(\d+)`),
}

// ExtractChartID pulls the numeric chart id out of a MacroMicro URL.
//
// Two URL shapes are recognized:
//   - https://www.macromicro.me/charts/{chart_id}/{slug}
//   - https://www.macromicro.me/collections/{collection_id}/{collection_slug}/{chart_id}/{slug}
//
// The id is not validated against the upstream; a stale or fabricated id
// simply fails at fetch time.
func ExtractChartID(url string) (string, bool) {
	for _, p := range chartURLPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// PreviewImageURL constructs the CDN URL of a chart's rendered preview.
// Images are sharded into directories named after the last three digits of
// the id, left-zero-padded to width 3, and the file is "<id>-tc.png".
// Pure construction — no network access and no existence check.
func PreviewImageURL(cdnBaseURL, chartID string) string {
	dir := chartID
	if len(dir) > 3 {
		dir = dir[len(dir)-3:]
	}
	if pad := 3 - len(dir); pad > 0 {
		dir = strings.Repeat("0", pad) + dir
	}
	return cdnBaseURL + "/files/charts/" + dir + "/" + chartID + "-tc.png"
}
