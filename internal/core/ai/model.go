// Package ai drives one turn of chatbot conversation: it builds the
// restaurant context, exposes the order tools to the language model,
// executes requested tool calls, and produces the final reply.
package ai

import (
	"context"
	"encoding/json"
)

// Message roles in the model transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a structured request from the model to invoke a named
// function with JSON arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatMessage is one entry in the model transcript. Tool results carry
// the ToolCallID they answer; assistant entries may carry the calls
// they proposed.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolSpec describes one callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema
}

// ProposeRequest is one round-trip to the model.
type ProposeRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolSpec

	// ForceFinal forbids further tool calls; used once the round cap
	// is reached so the model must answer from gathered tool outputs.
	ForceFinal bool
}

// Proposal is the model's move: either a final natural-language answer
// or one or more tool calls to execute.
type Proposal struct {
	FinalText string
	ToolCalls []ToolCall
}

// ToolModel abstracts the concrete language-model vendor so the
// round-trip and cap logic is independent of any one provider's
// request/response shape. Tests use a scripted implementation.
type ToolModel interface {
	Propose(ctx context.Context, req ProposeRequest) (*Proposal, error)
	Name() string
}
