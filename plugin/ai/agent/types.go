// Package agent implements the tool-orchestrating conversation loop:
// one Reason, Act, Synthesize cycle per user turn, with deterministic
// fallbacks wherever the generative model misbehaves.
package agent

import "github.com/signos-ai/signos/server/retrieval"

// ToolCall is one requested tool invocation, emitted by the model's
// reasoning output or by the deterministic fallback classifier.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of one tool invocation. Tools never raise;
// a failure is represented here and the turn continues.
type ToolResult struct {
	ToolName string
	Success  bool
	Entries  []retrieval.Entry
	// Enrichment is a best-effort secondary lookup against the other
	// index. Its absence never marks the result failed.
	Enrichment *retrieval.Entry
	Error      string
}

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role string // user, assistant
	Text string
}

// ConversationContext carries the linear history plus read-only
// learning state owned by the lesson subsystem.
type ConversationContext struct {
	SessionID    string
	Turns        []Turn
	LessonTitle  string
	LearnerLevel string
}

// TurnResult is the agent's answer for one user turn: the user-visible
// message plus the structured entries for client-side media rendering.
type TurnResult struct {
	Message string
	Entries []retrieval.Entry
}

type reasoningOutput struct {
	Thought   string     `json:"thought"`
	ToolCalls []ToolCall `json:"tool_calls"`
}
