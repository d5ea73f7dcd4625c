package chatmark

import (
	"bytes"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// SimulateRequest configures Simulate.
type SimulateRequest struct {
	Reader    io.Reader
	Writer    io.Writer
	Width     int
	Theme     Theme
	ChunkSize int
	Delay     time.Duration
	Options   []RenderOption
}

// Simulate renders chat markup and trickles the output to Writer in chunks
// of ChunkSize runes, pausing Delay between chunks. This approximates how a
// reply arrives from a model backend.
func Simulate(req SimulateRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("simulate: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("simulate: writer is nil")
	}
	if req.ChunkSize <= 0 {
		return fmt.Errorf("simulate: chunk size must be > 0")
	}
	var buf bytes.Buffer
	err := Render(RenderRequest{
		Reader:  req.Reader,
		Writer:  &buf,
		Width:   req.Width,
		Theme:   req.Theme,
		Options: req.Options,
	})
	if err != nil {
		return err
	}
	out := buf.Bytes()
	first := true
	for start := 0; start < len(out); {
		end := start
		for count := 0; end < len(out) && count < req.ChunkSize; count++ {
			_, size := utf8.DecodeRune(out[end:])
			end += size
		}
		if !first && req.Delay > 0 {
			time.Sleep(req.Delay)
		}
		first = false
		if _, err := req.Writer.Write(out[start:end]); err != nil {
			return fmt.Errorf("simulate: write: %w", err)
		}
		start = end
	}
	return nil
}
