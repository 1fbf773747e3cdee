package widget

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Service owns the live conversations, one state machine per visitor session.
type Service struct {
	cfg       config.WidgetConfig
	faqs      faq.Store
	clk       clock.Clock
	hooks     Hooks
	responder Responder

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewService bootstraps the in-memory conversation registry.
func NewService(cfg config.WidgetConfig, faqs faq.Store, clk clock.Clock, hooks Hooks, responder Responder) *Service {
	return &Service{
		cfg:           cfg,
		faqs:          faqs,
		clk:           clk,
		hooks:         hooks,
		responder:     responder,
		conversations: make(map[string]*Conversation),
	}
}

// Create provisions a fresh conversation for an anonymous visitor.
func (s *Service) Create(_ context.Context) *Conversation {
	conv := newConversation(uuid.NewString(), s.cfg, s.faqs, s.clk, s.hooks, s.responder)

	s.mu.Lock()
	s.conversations[conv.ID()] = conv
	s.mu.Unlock()

	return conv
}

// Get retrieves a conversation by session identifier.
func (s *Service) Get(_ context.Context, sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[sessionID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// Remove stops a conversation and drops it from the registry.
func (s *Service) Remove(_ context.Context, sessionID string) {
	s.mu.Lock()
	conv, ok := s.conversations[sessionID]
	if ok {
		delete(s.conversations, sessionID)
	}
	s.mu.Unlock()

	if ok {
		conv.Stop()
	}
}

// Summaries lists all live conversations, most recently active first.
func (s *Service) Summaries(_ context.Context) []Summary {
	s.mu.RLock()
	conversations := make([]*Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		conversations = append(conversations, conv)
	}
	s.mu.RUnlock()

	summaries := make([]Summary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, conv.Summarize())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}
