// Package content defines multi-modal content parts for chat messages.
package content

// Part is a piece of content within a message.
// External packages can implement this interface to add custom content types.
type Part interface {
	PartKind() string
}

// Text is a plain text content part.
type Text struct {
	Text string
}

func (t Text) PartKind() string { return "text" }

// Image is an image content part, embedded as raw bytes.
type Image struct {
	Data      []byte
	MediaType string
}

func (i Image) PartKind() string { return "image" }
