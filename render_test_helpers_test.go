package chatmark

import (
	"os"
	"testing"
)

func renderText(t *testing.T, src []byte, width int) string {
	t.Helper()
	return renderTextWithOptions(t, src, width, WithOSC8(false))
}

func readReply(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/reply.md")
	if err != nil {
		t.Fatalf("read reply.md: %v", err)
	}
	return data
}

func readNotes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/notes.md")
	if err != nil {
		t.Fatalf("read notes.md: %v", err)
	}
	return data
}
