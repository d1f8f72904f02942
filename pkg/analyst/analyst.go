// Package analyst assembles multimodal chart-analysis requests: the chart's
// preview image, a formatted summary of each series' latest values, and the
// user's question, sent as one self-contained model call.
package analyst

import (
	"context"
	"fmt"
	"strings"

	"github.com/x1001000/mm-chart-view/pkg/chats/chat"
	"github.com/x1001000/mm-chart-view/pkg/chats/content"
	"github.com/x1001000/mm-chart-view/pkg/chats/message"
	"github.com/x1001000/mm-chart-view/pkg/chats/role"
	"github.com/x1001000/mm-chart-view/pkg/macromicro"
	"github.com/x1001000/mm-chart-view/pkg/modeladapter"
)

// Analyst answers questions about a loaded chart via a Completer.
type Analyst struct {
	completer modeladapter.Completer
}

// New creates an Analyst backed by the given completer.
func New(c modeladapter.Completer) *Analyst {
	return &Analyst{completer: c}
}

// Ask sends one multimodal request — PNG image, series summary block, and the
// raw question, in that order — and returns the model's text reply.
//
// Each call is self-contained: prior conversation turns are NOT included, so
// the model sees only the current question plus the chart artifacts.
func (a *Analyst) Ask(ctx context.Context, imageBytes []byte, series []macromicro.Series, question string) (string, error) {
	parts := make([]content.Part, 0, 3)
	if len(imageBytes) > 0 {
		parts = append(parts, content.Image{Data: imageBytes, MediaType: "image/png"})
	}
	parts = append(parts,
		content.Text{Text: FormatSeriesBlock(series)},
		content.Text{Text: question},
	)

	c := chat.New(message.New("user", role.User, parts...))

	reply, err := a.completer.Complete(ctx, c)
	if err != nil {
		return "", fmt.Errorf("analyst: %w", err)
	}

	return reply.TextContent(), nil
}

// FormatSeriesBlock renders the series summary as prompt text:
//
//	Chart Data (Latest Two Values):
//	- <name>: <v0> -> <v1>
//	- <name>: <v0>
//
// Series with no values are omitted from the block (they still exist in the
// series list itself).
func FormatSeriesBlock(series []macromicro.Series) string {
	lines := []string{"Chart Data (Latest Two Values):"}
	for _, s := range series {
		switch {
		case len(s.Latest) >= 2:
			lines = append(lines, fmt.Sprintf("- %s: %s -> %s",
				s.Name, macromicro.FormatValue(s.Latest[0]), macromicro.FormatValue(s.Latest[1])))
		case len(s.Latest) == 1:
			lines = append(lines, fmt.Sprintf("- %s: %s", s.Name, macromicro.FormatValue(s.Latest[0])))
		}
	}
	return strings.Join(lines, "\n")
}
