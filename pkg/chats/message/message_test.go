package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x1001000/mm-chart-view/pkg/chats/content"
	"github.com/x1001000/mm-chart-view/pkg/chats/role"
)

func TestNewText(t *testing.T) {
	m := NewText("user", role.User, "hello")

	assert.Equal(t, "user", m.Sender)
	assert.Equal(t, role.User, m.Role)
	assert.Equal(t, "hello", m.TextContent())
}

func TestTextContent_Multipart(t *testing.T) {
	m := New("user", role.User,
		content.Text{Text: "first"},
		content.Image{Data: []byte{1, 2}, MediaType: "image/png"},
		content.Text{Text: " second"},
	)

	// Only text parts contribute; image parts are skipped.
	assert.Equal(t, "first second", m.TextContent())
}

func TestTextContent_Empty(t *testing.T) {
	assert.Empty(t, Message{}.TextContent())
}

func TestImages(t *testing.T) {
	img := content.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MediaType: "image/png"}
	m := New("user", role.User,
		img,
		content.Text{Text: "caption"},
	)

	imgs := m.Images()
	assert.Len(t, imgs, 1)
	assert.Equal(t, img, imgs[0])
}

func TestImages_None(t *testing.T) {
	m := NewText("user", role.User, "no pictures here")

	assert.Empty(t, m.Images())
}
