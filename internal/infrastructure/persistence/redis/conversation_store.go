package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/conversation"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/user"
)

// ConversationStore is the Redis implementation of conversation.Store.
// Each dialogue is one JSON value under a conversation: key with a sliding
// TTL; every save refreshes it.
type ConversationStore struct {
	cache *Cache
}

// NewConversationStore creates the store.
func NewConversationStore(cache *Cache) *ConversationStore {
	return &ConversationStore{cache: cache}
}

// Load implements conversation.Store. A missing key yields a fresh idle
// state, so first contact needs no special casing upstream.
func (s *ConversationStore) Load(ctx context.Context, id user.TelegramID) (*conversation.State, error) {
	var state conversation.State

	err := s.cache.Get(ctx, ConversationKey(id.Int64()), &state)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return conversation.NewState(), nil
		}
		return nil, fmt.Errorf("load conversation state: %w", err)
	}

	// Stored JSON is external data; repair anything out of range.
	if state.Stage == "" {
		state.Stage = conversation.StageIdle
	}
	state.ClampPage()
	return &state, nil
}

// Save implements conversation.Store.
func (s *ConversationStore) Save(ctx context.Context, id user.TelegramID, state *conversation.State) error {
	if err := s.cache.Set(ctx, ConversationKey(id.Int64()), state, TTLConversation); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

// Clear implements conversation.Store.
func (s *ConversationStore) Clear(ctx context.Context, id user.TelegramID) error {
	if err := s.cache.Delete(ctx, ConversationKey(id.Int64())); err != nil {
		return fmt.Errorf("clear conversation state: %w", err)
	}
	return nil
}
