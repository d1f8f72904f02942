package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x1001000/mm-chart-view/pkg/chats/message"
	"github.com/x1001000/mm-chart-view/pkg/chats/role"
)

func TestNew(t *testing.T) {
	m1 := message.NewText("user", role.User, "hello")
	m2 := message.NewText("bot", role.Assistant, "hi")
	c := New(m1, m2)

	assert.Equal(t, 2, c.Len())
}

func TestChat_ZeroValue(t *testing.T) {
	var c Chat

	assert.Equal(t, 0, c.Len())

	_, ok := c.Last()
	assert.False(t, ok)
	assert.Empty(t, c.Messages())
}

func TestChat_Append(t *testing.T) {
	c := New()
	c.Append(message.NewText("user", role.User, "one"))
	c.Append(
		message.NewText("bot", role.Assistant, "two"),
		message.NewText("user", role.User, "three"),
	)

	assert.Equal(t, 3, c.Len())
}

func TestChat_At(t *testing.T) {
	m := message.NewText("user", role.User, "hello")
	c := New(m)

	got := c.At(0)
	assert.Equal(t, role.User, got.Role)
	assert.Equal(t, "hello", got.TextContent())
}

func TestChat_At_Panics(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.At(0) })
}

func TestChat_Last(t *testing.T) {
	c := New(
		message.NewText("user", role.User, "first"),
		message.NewText("bot", role.Assistant, "second"),
	)

	msg, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "second", msg.TextContent())
}

func TestChat_Messages_ReturnsCopy(t *testing.T) {
	c := New(message.NewText("user", role.User, "hello"))

	msgs := c.Messages()
	msgs[0] = message.NewText("bot", role.Assistant, "modified")

	assert.Equal(t, "hello", c.At(0).TextContent())
}

func TestChat_Each(t *testing.T) {
	c := New(
		message.NewText("user", role.User, "a"),
		message.NewText("bot", role.Assistant, "b"),
		message.NewText("user", role.User, "c"),
	)

	var visited []string
	c.Each(func(_ int, m message.Message) bool {
		visited = append(visited, m.TextContent())
		return true
	})

	assert.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestChat_Each_EarlyStop(t *testing.T) {
	c := New(
		message.NewText("user", role.User, "a"),
		message.NewText("bot", role.Assistant, "b"),
		message.NewText("user", role.User, "c"),
	)

	var visited []string
	c.Each(func(_ int, m message.Message) bool {
		visited = append(visited, m.TextContent())
		return len(visited) < 2
	})

	assert.Equal(t, []string{"a", "b"}, visited)
}

func TestChat_Reset(t *testing.T) {
	c := New(
		message.NewText("user", role.User, "a"),
		message.NewText("bot", role.Assistant, "b"),
	)

	c.Reset()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Last()
	assert.False(t, ok)

	// A reset chat accepts new messages.
	c.Append(message.NewText("user", role.User, "again"))
	assert.Equal(t, 1, c.Len())
}

func TestChat_SystemPrompt(t *testing.T) {
	c := New(
		message.NewText("", role.System, "you are helpful"),
		message.NewText("user", role.User, "hello"),
	)

	assert.Equal(t, "you are helpful", c.SystemPrompt())
}

func TestChat_SystemPrompt_None(t *testing.T) {
	c := New(message.NewText("user", role.User, "hello"))

	assert.Empty(t, c.SystemPrompt())
}
