package assist

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
)

func TestBuildHistoryMessagesMapsRoles(t *testing.T) {
	messages := []chat.Message{
		{Role: chat.RoleBot, Content: "welcome"},
		{Role: chat.RoleUser, Content: "question"},
		{Role: chat.RoleBot, IsTyping: true},
		{Role: chat.RoleAgent, Content: "agent greeting"},
	}

	history := buildHistoryMessages(messages)
	if len(history) != 2 {
		t.Fatalf("expected typing and agent messages skipped, got %d entries", len(history))
	}
	if history[0].Role != schema.Assistant || history[1].Role != schema.User {
		t.Fatalf("unexpected role mapping: %s, %s", history[0].Role, history[1].Role)
	}
}

func TestBuildHistoryMessagesCapsLength(t *testing.T) {
	var messages []chat.Message
	for i := 0; i < 25; i++ {
		messages = append(messages, chat.Message{Role: chat.RoleUser, Content: fmt.Sprintf("message %d", i)})
	}

	history := buildHistoryMessages(messages)
	if len(history) != 10 {
		t.Fatalf("expected the history capped at 10, got %d", len(history))
	}
	if history[0].Content != "message 15" {
		t.Fatalf("expected the most recent window, got %q first", history[0].Content)
	}
}

func TestBuildHistoryMessagesEmpty(t *testing.T) {
	if got := buildHistoryMessages(nil); got != nil {
		t.Fatalf("expected nil history for an empty transcript, got %v", got)
	}
}
