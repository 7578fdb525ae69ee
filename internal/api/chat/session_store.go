package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// Conversation is one assistant chat. The model-side history lives in
// model; messages is what the user has seen, with the sentinel removed.
type Conversation struct {
	mu        sync.Mutex
	ID        uuid.UUID
	CreatedAt time.Time
	model     ports.Conversation
	messages  []types.ChatMessage
}

func (c *Conversation) append(role types.ChatRole, content string, at time.Time) {
	c.messages = append(c.messages, types.ChatMessage{Role: role, Content: content, Timestamp: at})
}

// Messages returns a copy of the visible history.
func (c *Conversation) Messages() []types.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.ChatMessage{}, c.messages...)
}

// SessionStore holds conversations by session id. Entries expire after the
// session TTL.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (s *SessionStore) Put(c *Conversation) {
	s.cache.Set(c.ID.String(), c, s.ttl)
}

func (s *SessionStore) Get(id uuid.UUID) (*Conversation, bool) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, false
	}
	c, ok := v.(*Conversation)
	return c, ok
}

func (s *SessionStore) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}

func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
