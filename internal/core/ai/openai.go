package ai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel implements ToolModel over the OpenAI chat completion API.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIModel{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: 0.6,
		maxTokens:   500,
	}
}

func (m *OpenAIModel) Name() string {
	return "OpenAI"
}

func (m *OpenAIModel) Propose(ctx context.Context, req ProposeRequest) (*Proposal, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, msg := range req.Messages {
		messages = append(messages, toOpenAIMessage(msg))
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.Tool, 0, len(req.Tools))
		for _, spec := range req.Tools {
			tools = append(tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        spec.Name,
					Description: spec.Description,
					Parameters:  json.RawMessage(spec.Parameters),
				},
			})
		}
		chatReq.Tools = tools
		if req.ForceFinal {
			chatReq.ToolChoice = "none"
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 && !req.ForceFinal {
		calls := make([]ToolCall, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			calls = append(calls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
		}
		return &Proposal{ToolCalls: calls}, nil
	}

	return &Proposal{FinalText: choice.Content}, nil
}

func toOpenAIMessage(msg ChatMessage) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	switch msg.Role {
	case RoleUser:
		out.Role = openai.ChatMessageRoleUser
	case RoleAssistant:
		out.Role = openai.ChatMessageRoleAssistant
	case RoleTool:
		out.Role = openai.ChatMessageRoleTool
	default:
		out.Role = openai.ChatMessageRoleSystem
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      call.Name,
				Arguments: string(call.Arguments),
			},
		})
	}
	return out
}
