package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/x1001000/mm-chart-view/pkg/analyst"
	"github.com/x1001000/mm-chart-view/pkg/chats/chat"
	"github.com/x1001000/mm-chart-view/pkg/chats/message"
	"github.com/x1001000/mm-chart-view/pkg/chats/role"
	"github.com/x1001000/mm-chart-view/pkg/macromicro"
)

// ErrInvalidURL is returned by LoadChart when no chart id can be extracted.
// The session stays in its current state; the user corrects the input.
var ErrInvalidURL = errors.New("engine: no chart id found in URL")

// ErrNoChart is returned by Ask when no chart has been loaded yet.
var ErrNoChart = errors.New("engine: no chart loaded")

// Snapshot holds the artifacts of the currently loaded chart. It is replaced
// wholly — never merged — on each successful load.
type Snapshot struct {
	ChartID string
	Series  []macromicro.Series
	Image   []byte
}

// LoadResult reports the outcome of a LoadChart call. The two fetch legs are
// independent: a failed image fetch never blocks series data, and vice versa.
// Both errors may be set; the chart still counts as loaded.
type LoadResult struct {
	ChartID  string
	Series   []macromicro.Series
	Image    []byte
	DataErr  error // chart-data fetch or parse failure
	ImageErr error // preview image fetch failure
}

// AskResult reports the outcome of an Ask call. When the model call fails,
// Err carries the failure and Answer holds the visible error turn that was
// appended to the transcript; the session stays usable either way.
type AskResult struct {
	Answer message.Message
	Err    error
}

// Session is one interactive chart-analysis conversation. It owns the chart
// snapshot and the transcript. Only one LoadChart or Ask call may be active
// at a time.
type Session struct {
	client  *macromicro.Client
	analyst *analyst.Analyst

	mu     sync.Mutex
	active bool

	snapshot   *Snapshot
	transcript *chat.Chat
}

func newSession(client *macromicro.Client, a *analyst.Analyst) *Session {
	return &Session{
		client:     client,
		analyst:    a,
		transcript: chat.New(),
	}
}

// Loaded reports whether a chart snapshot is present.
func (s *Session) Loaded() bool { return s.snapshot != nil }

// Snapshot returns the current chart snapshot. The bool is false before the
// first successful load.
func (s *Session) Snapshot() (Snapshot, bool) {
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// Transcript returns the session transcript for direct observation.
func (s *Session) Transcript() *chat.Chat { return s.transcript }

// LoadChart resolves the chart id from the URL, fetches the chart data and
// the preview image, replaces the snapshot, and clears the transcript.
//
// ErrInvalidURL leaves the session untouched. Fetch and parse failures do not
// fail the load: they are reported per-leg in the LoadResult and the affected
// artifact is simply absent.
func (s *Session) LoadChart(ctx context.Context, url string) (LoadResult, error) {
	if err := s.acquire(); err != nil {
		return LoadResult{}, err
	}
	defer s.release()

	id, ok := macromicro.ExtractChartID(url)
	if !ok {
		return LoadResult{}, ErrInvalidURL
	}

	res := LoadResult{ChartID: id}

	// Data leg: fetch, then extract per-series latest values.
	payload, err := s.client.FetchChartData(ctx, id)
	if err != nil {
		res.DataErr = err
	} else {
		series, perr := macromicro.ExtractSeries(payload, id)
		res.Series = series
		res.DataErr = perr
	}

	// Image leg: independent of the data leg.
	img, err := s.client.FetchImage(ctx, s.client.PreviewImageURL(id))
	if err != nil {
		res.ImageErr = err
	} else {
		res.Image = img
	}

	s.snapshot = &Snapshot{ChartID: id, Series: res.Series, Image: res.Image}
	s.transcript.Reset()

	return res, nil
}

// Ask appends the question to the transcript, invokes the analyst with the
// cached chart artifacts, and appends the answer. A model failure becomes a
// visible error turn rather than propagating; the returned AskResult carries
// both the appended turn and the underlying error.
//
// Prior transcript turns are not resent to the model — each question is
// answered from the chart artifacts and the new question text alone.
func (s *Session) Ask(ctx context.Context, question string) (AskResult, error) {
	if err := s.acquire(); err != nil {
		return AskResult{}, err
	}
	defer s.release()

	if s.snapshot == nil {
		return AskResult{}, ErrNoChart
	}

	s.transcript.Append(message.NewText("user", role.User, question))

	text, err := s.analyst.Ask(ctx, s.snapshot.Image, s.snapshot.Series, question)
	if err != nil {
		errTurn := message.NewText("assistant", role.Assistant, "Error generating response: "+err.Error())
		s.transcript.Append(errTurn)
		return AskResult{Answer: errTurn, Err: err}, nil
	}

	answer := message.NewText("assistant", role.Assistant, text)
	s.transcript.Append(answer)

	return AskResult{Answer: answer}, nil
}

// Clear discards the snapshot and transcript, returning to the empty state.
// Like LoadChart and Ask, it refuses while another call is active.
func (s *Session) Clear() error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.snapshot = nil
	s.transcript.Reset()
	return nil
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return fmt.Errorf("engine: session: another call is already active")
	}
	s.active = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
}
