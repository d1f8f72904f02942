package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// chatViewModel renders the transcript into a scrollable viewport and shows a
// spinner line while a load or ask is in flight.
type chatViewModel struct {
	viewport      viewport.Model
	committed     *strings.Builder // pointer to avoid copy panic
	processing    bool
	spinnerIdx    int
	processingMsg string
	width         int
	height        int
	ready         bool
}

func newChatView() chatViewModel {
	return chatViewModel{committed: &strings.Builder{}}
}

func (m *chatViewModel) setSize(w, h int) {
	m.width = w
	m.height = h
	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.refresh()
}

// commitUserMessage appends a rendered user turn.
func (m *chatViewModel) commitUserMessage(text string) {
	m.committed.WriteString("\n" + renderUserMessage(text) + "\n")
	m.refresh()
}

// commitAnswer appends a rendered assistant turn (markdown).
func (m *chatViewModel) commitAnswer(text string) {
	rendered := renderMarkdown(text)
	line := "\n" + answerBlockStyle.Render(
		answerPrefixStyle.Render("🤖 analyst > ")+rendered,
	)
	m.committed.WriteString(line + "\n")
	m.refresh()
}

// commitError appends a red-bordered error block.
func (m *chatViewModel) commitError(text string) {
	block := errorBlockStyle.Render(errorTextStyle.Render(text))
	m.committed.WriteString("\n" + block + "\n")
	m.refresh()
}

// commitInfo appends a dim informational line.
func (m *chatViewModel) commitInfo(text string) {
	m.committed.WriteString("\n" + statusStyle.Render(text) + "\n")
	m.refresh()
}

// commitOK appends a green confirmation line.
func (m *chatViewModel) commitOK(text string) {
	m.committed.WriteString("\n" + okStyle.Render(text) + "\n")
	m.refresh()
}

// Clear discards all committed content.
func (m *chatViewModel) Clear() {
	m.committed.Reset()
	m.refresh()
}

// setProcessing sets the processing state and picks a random spinner message.
func (m *chatViewModel) setProcessing(on bool, msg string) {
	m.processing = on
	if on {
		if msg == "" {
			msg = randomThinkingMessage()
		}
		m.processingMsg = msg
	}
}

// advanceSpinner increments the spinner frame.
func (m *chatViewModel) advanceSpinner() {
	m.spinnerIdx++
}

// refresh rewrites the viewport content and follows the tail.
func (m *chatViewModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.committed.String())
	m.viewport.GotoBottom()
}

func (m chatViewModel) View() string {
	if !m.ready {
		return ""
	}

	view := m.viewport.View()

	if m.processing {
		frame := spinnerFrames[m.spinnerIdx%len(spinnerFrames)]
		spin := fmt.Sprintf("  %s %s",
			spinnerStyle.Render(frame),
			spinnerStyle.Render(m.processingMsg),
		)
		// Overlay the spinner on the last viewport line.
		lines := strings.Split(view, "\n")
		if len(lines) > 0 {
			lines[len(lines)-1] = spin
		}
		view = strings.Join(lines, "\n")
	}

	return view
}

// scroll forwards key/mouse events the app routes here.
func (m *chatViewModel) scrollUp()   { m.viewport.ScrollUp(1) }
func (m *chatViewModel) scrollDown() { m.viewport.ScrollDown(1) }
