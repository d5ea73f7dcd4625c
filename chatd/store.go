package chatd

import (
	"context"
	"sort"
)

// Store persists conversations. Get and Delete return *NotFoundError for
// unknown ids; backend failures surface as *StorageError.
type Store interface {
	Save(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	List(ctx context.Context) ([]*Conversation, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// sortConversations orders newest-activity first.
func sortConversations(convs []*Conversation) {
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}
