package controller

import (
	"io"
	"os"
)

// Display is the popup display area: one text/markup surface plus the focus
// probe the advisory timer reads.
type Display interface {
	// SetText replaces the display contents with a plain message.
	SetText(text string)

	// SetHTML replaces the display contents with a markup fragment.
	SetHTML(html string)

	// Focused reports whether the display still has the user's attention.
	Focused() bool
}

// WriterDisplay writes the display surface to an io.Writer. It always
// reports focus; the advisory timer stays quiet for it.
type WriterDisplay struct {
	w io.Writer
}

// NewWriterDisplay creates a display backed by w.
func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{w: w}
}

// NewFileDisplay creates a display writing to path, or stdout when path is
// empty.
func NewFileDisplay(path string) (*WriterDisplay, func() error, error) {
	if path == "" {
		return NewWriterDisplay(os.Stdout), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return NewWriterDisplay(f), f.Close, nil
}

func (d *WriterDisplay) SetText(text string) {
	io.WriteString(d.w, text+"\n")
}

func (d *WriterDisplay) SetHTML(html string) {
	io.WriteString(d.w, html)
}

func (d *WriterDisplay) Focused() bool { return true }
