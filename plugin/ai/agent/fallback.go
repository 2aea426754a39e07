package agent

import (
	"strings"

	"github.com/signos-ai/signos/server/queryengine"
)

// FallbackToolCalls maps the deterministic intent classification onto
// the tool-call shape the model would have produced. Used when the
// reasoning call is unavailable, times out, or returns unparseable
// output.
func FallbackToolCalls(text string) []ToolCall {
	intent := queryengine.Classify(text)

	switch intent.Kind {
	case queryengine.IntentSignLookup:
		if isSingleTerm(intent.SignTerm) {
			return []ToolCall{{
				Name:      ToolSignLookup,
				Arguments: map[string]any{"termino": intent.SignTerm},
			}}
		}
		return []ToolCall{{
			Name:      ToolSignTranslate,
			Arguments: map[string]any{"frase": intent.SignTerm},
		}}
	case queryengine.IntentKnowledge:
		return []ToolCall{{
			Name:      ToolKnowledgeSearch,
			Arguments: map[string]any{"consulta": intent.Query},
		}}
	case queryengine.IntentHybrid:
		return []ToolCall{
			{
				Name:      ToolSignLookup,
				Arguments: map[string]any{"termino": intent.SignTerm},
			},
			{
				Name:      ToolKnowledgeSearch,
				Arguments: map[string]any{"consulta": intent.Query},
			},
		}
	default:
		return nil
	}
}

// isSingleTerm distinguishes one-sign lookups from multi-word phrases
// that need sentence translation.
func isSingleTerm(term string) bool {
	return len(strings.Fields(term)) <= 2
}
