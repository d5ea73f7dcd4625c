package chatd

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedEmbeddedFixtures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	summary, err := Seed(ctx, store, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Conversations)
	assert.Equal(t, 6, summary.Messages)
	assert.Positive(t, summary.Bytes)
	assert.Zero(t, summary.Cleared)

	convs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 3)

	titles := make([]string, 0, len(convs))
	for _, conv := range convs {
		titles = append(titles, conv.Title)
		require.Len(t, conv.Messages, 2)
		assert.Equal(t, RoleUser, conv.Messages[0].Role)
		assert.Equal(t, RoleAssistant, conv.Messages[1].Role)
	}
	assert.ElementsMatch(t, []string{"Introduction to AI", "Python Programming", "Web Development"}, titles)
}

func TestSeedClearFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, NewConversation("leftover")))

	summary, err := Seed(ctx, store, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cleared)

	convs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 3)
}

func TestSeedKeepsExistingWithoutClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, NewConversation("leftover")))

	_, err := Seed(ctx, store, nil, false)
	require.NoError(t, err)

	convs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 4)
}

func TestSeedInjectedFS(t *testing.T) {
	fixture := `---
title: Custom
---
first question
---
first answer
---
second question
---
second answer
`
	fsys := fstest.MapFS{
		"custom.md": &fstest.MapFile{Data: []byte(fixture)},
	}

	ctx := context.Background()
	store := NewMemoryStore()
	summary, err := Seed(ctx, store, fsys, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Conversations)
	assert.Equal(t, 4, summary.Messages)

	convs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	conv := convs[0]
	assert.Equal(t, "Custom", conv.Title)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, RoleUser, conv.Messages[2].Role)
	assert.Equal(t, "second answer", conv.Messages[3].Content)
}

func TestSeedRejectsBadFixtures(t *testing.T) {
	ctx := context.Background()

	noTitle := fstest.MapFS{
		"broken.md": &fstest.MapFile{Data: []byte("---\nauthor: nobody\n---\nhello\n")},
	}
	_, err := Seed(ctx, NewMemoryStore(), noTitle, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.md")
	assert.Contains(t, err.Error(), "title")

	empty := fstest.MapFS{
		"hollow.md": &fstest.MapFile{Data: []byte("---\ntitle: Hollow\n---\n\n")},
	}
	_, err = Seed(ctx, NewMemoryStore(), empty, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hollow.md")
}
