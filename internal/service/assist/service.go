package assist

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
)

const systemPromptTemplate = "You are %s, the shopping assistant for an online store. " +
	"The visitor asked something the store's FAQ does not cover. Answer briefly and " +
	"helpfully in one or two sentences. Never invent order details, prices or policies; " +
	"when you do not know, suggest talking to a human agent."

// Service generates the fallback reply for questions the FAQ matcher misses.
// It implements widget.Responder.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	botName   string
}

// NewService wires the Ark chat model into a prompt-template chain.
func NewService(ctx context.Context, cfg config.AIConfig, botName string) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile assist chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
		botName:   botName,
	}, nil
}

// Reply runs the chain over the recent transcript and the unmatched question.
func (s *Service) Reply(ctx context.Context, history []chat.Message, userText string) (string, error) {
	input := map[string]any{
		"system":  fmt.Sprintf(systemPromptTemplate, s.botName),
		"history": buildHistoryMessages(history),
		"query":   userText,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run assist chain: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	log.Printf("[assist] generated fallback reply, length=%d", len(reply))
	return reply, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		if msg.IsTyping {
			continue
		}
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleBot:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
