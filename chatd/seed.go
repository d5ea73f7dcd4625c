package chatd

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

//go:embed seeddata/*.md
var seedFixtures embed.FS

// SeedSummary reports what a Seed run did.
type SeedSummary struct {
	Conversations int
	Messages      int
	Bytes         int64
	Cleared       int
}

// Seed loads example conversations into store from markdown fixtures: a
// YAML front matter block carries the title, and the body alternates user
// and assistant messages separated by --- lines. A nil fsys selects the
// embedded fixtures.
func Seed(ctx context.Context, store Store, fsys fs.FS, clearFirst bool) (SeedSummary, error) {
	var summary SeedSummary
	if fsys == nil {
		fsys = seedFixtures
	}
	if clearFirst {
		n, err := store.DeleteAll(ctx)
		if err != nil {
			return summary, fmt.Errorf("seed: clear: %w", err)
		}
		summary.Cleared = n
	}
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".md" {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("seed: walk fixtures: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return summary, fmt.Errorf("seed: read %s: %w", name, err)
		}
		conv, err := parseSeedFixture(data)
		if err != nil {
			return summary, fmt.Errorf("seed: %s: %w", name, err)
		}
		if err := store.Save(ctx, conv); err != nil {
			return summary, fmt.Errorf("seed: save %s: %w", name, err)
		}
		summary.Conversations++
		summary.Messages += len(conv.Messages)
		summary.Bytes += int64(len(data))
	}
	return summary, nil
}

func parseSeedFixture(data []byte) (*Conversation, error) {
	var matter struct {
		Title string `yaml:"title"`
	}
	body, err := frontmatter.Parse(bytes.NewReader(data), &matter)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	if strings.TrimSpace(matter.Title) == "" {
		return nil, fmt.Errorf("front matter: missing title")
	}
	conv := NewConversation(matter.Title)
	conv.Title = matter.Title
	for i, content := range splitMessages(body) {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		conv.Append(role, content)
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("no messages in fixture")
	}
	return conv, nil
}

// splitMessages cuts the fixture body on --- lines and trims each part.
func splitMessages(body []byte) []string {
	var parts []string
	var current []string
	flush := func() {
		if msg := strings.TrimSpace(strings.Join(current, "\n")); msg != "" {
			parts = append(parts, msg)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return parts
}
