package chatmark

import (
	"bytes"
	"strings"
	"testing"
)

func TestSimulateMatchesRenderOutput(t *testing.T) {
	src := "### Title\n\n* one\n* two\n\nClosing **remark** here.\n"
	var direct bytes.Buffer
	if err := Render(RenderRequest{
		Reader: strings.NewReader(src),
		Writer: &direct,
		Width:  40,
		Theme:  DefaultTheme(),
	}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var trickled bytes.Buffer
	if err := Simulate(SimulateRequest{
		Reader:    strings.NewReader(src),
		Writer:    &trickled,
		Width:     40,
		Theme:     DefaultTheme(),
		ChunkSize: 3,
	}); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if direct.String() != trickled.String() {
		t.Fatalf("simulate output diverged\n---direct---\n%q\n---trickled---\n%q",
			direct.String(), trickled.String())
	}
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	err := Simulate(SimulateRequest{Writer: &bytes.Buffer{}, ChunkSize: 1})
	if err == nil {
		t.Fatal("expected error for nil reader")
	}
	err = Simulate(SimulateRequest{Reader: strings.NewReader("x"), ChunkSize: 1})
	if err == nil {
		t.Fatal("expected error for nil writer")
	}
	err = Simulate(SimulateRequest{
		Reader:    strings.NewReader("x"),
		Writer:    &bytes.Buffer{},
		ChunkSize: 0,
	})
	if err == nil {
		t.Fatal("expected error for zero chunk size")
	}
}

func TestSimulateRejectsBinaryInput(t *testing.T) {
	err := Simulate(SimulateRequest{
		Reader:    bytes.NewReader([]byte{0x00, 0x01, 0x02}),
		Writer:    &bytes.Buffer{},
		ChunkSize: 4,
	})
	if err == nil {
		t.Fatal("expected binary input to be rejected")
	}
}
