package gemini_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x1001000/mm-chart-view/pkg/chats/chat"
	"github.com/x1001000/mm-chart-view/pkg/chats/content"
	"github.com/x1001000/mm-chart-view/pkg/chats/message"
	"github.com/x1001000/mm-chart-view/pkg/chats/role"
	"github.com/x1001000/mm-chart-view/pkg/providers/gemini"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *gemini.Adapter) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := gemini.New(srv.URL, "test-key", "gemini-test")

	return srv, a
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	return req
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     10,
			"candidatesTokenCount": 5,
			"totalTokenCount":      15,
		},
	}
}

func TestComplete_SimpleText(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)

		contents, ok := req["contents"].([]any)
		assert.True(t, ok)
		assert.Len(t, contents, 1)

		writeJSON(t, w, textResponse("Hello there!"))
	})

	c := chat.New(message.NewText("user", role.User, "Hi"))

	msg, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, role.Assistant, msg.Role)
	assert.Equal(t, "Hello there!", msg.TextContent())

	last, ok := adapter.Usage.Last()
	require.True(t, ok)
	assert.Equal(t, 10, last.InputTokens)
	assert.Equal(t, 5, last.OutputTokens)
}

func TestComplete_InlineImage(t *testing.T) {
	imgBytes := []byte{0x89, 'P', 'N', 'G'}

	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		contents, _ := req["contents"].([]any)
		require.Len(t, contents, 1)

		// Image, series block, and question merge into one user content.
		first, _ := contents[0].(map[string]any)
		parts, _ := first["parts"].([]any)
		require.Len(t, parts, 3)

		imgPart, _ := parts[0].(map[string]any)
		inline, ok := imgPart["inlineData"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "image/png", inline["mimeType"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(imgBytes), inline["data"])

		textPart, _ := parts[1].(map[string]any)
		assert.Contains(t, textPart["text"], "Chart Data")

		writeJSON(t, w, textResponse("It goes up."))
	})

	c := chat.New(message.New("user", role.User,
		content.Image{Data: imgBytes, MediaType: "image/png"},
		content.Text{Text: "Chart Data (Latest Two Values):\n- A: 1 -> 2"},
		content.Text{Text: "What is the trend?"},
	))

	msg, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "It goes up.", msg.TextContent())
}

func TestComplete_SearchToolEnabled(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		tools, ok := req["tools"].([]any)
		require.True(t, ok)
		require.Len(t, tools, 1)

		set, _ := tools[0].(map[string]any)
		_, ok = set["google_search"]
		assert.True(t, ok, "google_search tool should be declared")

		writeJSON(t, w, textResponse("ok"))
	})

	c := chat.New(message.NewText("user", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_SearchDisabled(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		_, ok := req["tools"]
		assert.False(t, ok, "tools should be omitted when search is off")

		writeJSON(t, w, textResponse("ok"))
	})
	adapter.Search = false

	c := chat.New(message.NewText("user", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_SystemInstruction(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		// System prompt goes into systemInstruction, not contents.
		si, ok := req["systemInstruction"].(map[string]any)
		require.True(t, ok)
		siParts, _ := si["parts"].([]any)
		require.Len(t, siParts, 1)
		firstPart, _ := siParts[0].(map[string]any)
		assert.Equal(t, "You are a chart analyst.", firstPart["text"])

		contents, _ := req["contents"].([]any)
		assert.Len(t, contents, 1)

		writeJSON(t, w, textResponse("ok"))
	})

	c := chat.New(
		message.NewText("system", role.System, "You are a chart analyst."),
		message.NewText("user", role.User, "Hi"),
	)

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_RoleMapping(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		contents, _ := req["contents"].([]any)
		require.Len(t, contents, 3)

		roles := make([]string, 0, 3)
		for _, c := range contents {
			m, _ := c.(map[string]any)
			roles = append(roles, m["role"].(string))
		}
		assert.Equal(t, []string{"user", "model", "user"}, roles)

		writeJSON(t, w, textResponse("ok"))
	})

	c := chat.New(
		message.NewText("user", role.User, "Hi"),
		message.NewText("", role.Assistant, "Hello"),
		message.NewText("user", role.User, "Bye"),
	)

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_EmptyCandidates(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"candidates": []any{}})
	})

	c := chat.New(message.NewText("user", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty candidates")
}

func TestComplete_HTTPError(t *testing.T) {
	_, adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	c := chat.New(message.NewText("user", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
