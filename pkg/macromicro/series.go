package macromicro

import (
	"fmt"
	"strconv"
)

// Series is one plotted line of a chart: a display name and its most recent
// values, oldest-first, at most two. A series with no history keeps an empty
// Latest — that is valid data, not an error.
type Series struct {
	Name   string
	Latest []any
}

// ExtractSeries walks the chart payload and returns one Series per configured
// series. The payload shape is
//
//	{"data": {"c:<id>": {"info": {"chart_config": {"seriesConfigs": [...]}}, "series": [[...], ...]}}}
//
// Display names come from each config's "name_tc", defaulting to
// "Series <n>" (1-based) when absent. Config indices with no matching value
// list are skipped silently. Any missing key or wrong shape in the overall
// structure is a single *ParseError returned alongside an empty list.
func ExtractSeries(payload map[string]any, chartID string) ([]Series, error) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, &ParseError{Path: "data"}
	}

	chartKey := "c:" + chartID
	chartData, ok := data[chartKey].(map[string]any)
	if !ok {
		return nil, &ParseError{Path: "data." + chartKey}
	}

	info, ok := chartData["info"].(map[string]any)
	if !ok {
		return nil, &ParseError{Path: "info"}
	}

	chartConfig, ok := info["chart_config"].(map[string]any)
	if !ok {
		return nil, &ParseError{Path: "info.chart_config"}
	}

	configs, ok := chartConfig["seriesConfigs"].([]any)
	if !ok {
		return nil, &ParseError{Path: "info.chart_config.seriesConfigs"}
	}

	values, ok := chartData["series"].([]any)
	if !ok {
		return nil, &ParseError{Path: "series"}
	}

	result := make([]Series, 0, len(configs))
	for i, rawCfg := range configs {
		name := fmt.Sprintf("Series %d", i+1)
		if cfg, ok := rawCfg.(map[string]any); ok {
			if n, ok := cfg["name_tc"].(string); ok && n != "" {
				name = n
			}
		}

		// Configs beyond the value lists are skipped, not an error.
		if i >= len(values) {
			continue
		}

		list, ok := values[i].([]any)
		if !ok {
			return nil, &ParseError{Path: fmt.Sprintf("series[%d]", i)}
		}

		latest := list
		if len(list) > 2 {
			latest = list[len(list)-2:]
		}

		result = append(result, Series{Name: name, Latest: latest})
	}

	return result, nil
}

// FormatValue renders one series value for display. Numbers decoded from
// JSON arrive as float64 and are printed without exponent notation; other
// values print as-is.
func FormatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
