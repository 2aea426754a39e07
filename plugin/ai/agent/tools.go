package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/signos-ai/signos/server/retrieval"
)

const (
	// ToolSignLookup resolves one sign term to its entry.
	ToolSignLookup = "buscar_sena"
	// ToolSignTranslate turns a full sentence into an ordered glosa
	// sequence.
	ToolSignTranslate = "traducir_frase"
	// ToolKnowledgeSearch answers explanatory questions from the
	// knowledge corpus.
	ToolKnowledgeSearch = "buscar_conocimiento"
)

// Tool is one named capability the agent may invoke. Run never returns
// an error; failures are carried inside the ToolResult.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]string
	Run(ctx context.Context, args map[string]any) *ToolResult
}

// Registry is the fixed tool catalog, built once at startup.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.order = append(r.order, t.Name())
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the named tool, or nil for unknown names.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// CatalogText renders the catalog for the reasoning prompt.
func (r *Registry) CatalogText() string {
	var b strings.Builder
	b.WriteString("Herramientas disponibles:\n")
	for _, name := range r.order {
		t := r.tools[name]
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
		for param, desc := range t.Parameters() {
			fmt.Fprintf(&b, "    %s: %s\n", param, desc)
		}
	}
	return b.String()
}

// DefaultRegistry wires the three production tools.
func DefaultRegistry(engine *retrieval.Engine, arbiter *retrieval.Arbiter) *Registry {
	return NewRegistry(
		&signLookupTool{engine: engine},
		&signTranslateTool{engine: engine, arbiter: arbiter},
		&knowledgeSearchTool{engine: engine},
	)
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func failed(name, detail string) *ToolResult {
	return &ToolResult{ToolName: name, Success: false, Error: detail}
}

type signLookupTool struct {
	engine *retrieval.Engine
}

func (t *signLookupTool) Name() string { return ToolSignLookup }

func (t *signLookupTool) Description() string {
	return "Busca la seña de UNA palabra o expresión corta. Usar cuando el usuario pregunta cómo se dice algo concreto."
}

func (t *signLookupTool) Parameters() map[string]string {
	return map[string]string{"termino": "la palabra o expresión a buscar"}
}

func (t *signLookupTool) Run(ctx context.Context, args map[string]any) *ToolResult {
	term := argString(args, "termino")
	if term == "" {
		return failed(t.Name(), "falta el argumento termino")
	}

	candidates, err := t.engine.Retrieve(ctx, term, retrieval.ModeExactSign)
	if err != nil {
		return failed(t.Name(), err.Error())
	}
	if len(candidates) == 0 {
		return &ToolResult{ToolName: t.Name(), Success: true}
	}

	result := &ToolResult{
		ToolName: t.Name(),
		Success:  true,
		Entries:  []retrieval.Entry{candidates[0].Entry},
	}
	result.Enrichment = enrichFromKnowledge(ctx, t.engine, candidates[0].Entry.Glosa)
	return result
}

type signTranslateTool struct {
	engine  *retrieval.Engine
	arbiter *retrieval.Arbiter
}

func (t *signTranslateTool) Name() string { return ToolSignTranslate }

func (t *signTranslateTool) Description() string {
	return "Traduce una frase completa a una secuencia ordenada de glosas. Usar para oraciones con varias palabras."
}

func (t *signTranslateTool) Parameters() map[string]string {
	return map[string]string{"frase": "la frase completa a traducir"}
}

func (t *signTranslateTool) Run(ctx context.Context, args map[string]any) *ToolResult {
	phrase := argString(args, "frase")
	if phrase == "" {
		return failed(t.Name(), "falta el argumento frase")
	}

	candidates, err := t.engine.Retrieve(ctx, phrase, retrieval.ModeSentenceSign)
	if err != nil {
		return failed(t.Name(), err.Error())
	}

	selected := t.arbiter.Arbitrate(ctx, phrase, candidates)
	entries := make([]retrieval.Entry, 0, len(selected))
	for _, c := range selected {
		entries = append(entries, c.Entry)
	}
	return &ToolResult{ToolName: t.Name(), Success: true, Entries: entries}
}

type knowledgeSearchTool struct {
	engine *retrieval.Engine
}

func (t *knowledgeSearchTool) Name() string { return ToolKnowledgeSearch }

func (t *knowledgeSearchTool) Description() string {
	return "Busca contenido explicativo sobre la lengua de señas, su historia, cultura y gramática."
}

func (t *knowledgeSearchTool) Parameters() map[string]string {
	return map[string]string{"consulta": "la pregunta o tema a investigar"}
}

func (t *knowledgeSearchTool) Run(ctx context.Context, args map[string]any) *ToolResult {
	query := argString(args, "consulta")
	if query == "" {
		return failed(t.Name(), "falta el argumento consulta")
	}

	candidates, err := t.engine.Retrieve(ctx, query, retrieval.ModeKnowledge)
	if err != nil {
		return failed(t.Name(), err.Error())
	}
	if len(candidates) == 0 {
		return &ToolResult{ToolName: t.Name(), Success: true}
	}

	result := &ToolResult{
		ToolName: t.Name(),
		Success:  true,
		Entries:  []retrieval.Entry{candidates[0].Entry},
	}
	result.Enrichment = enrichFromSigns(ctx, t.engine, query)
	return result
}

// enrichFromKnowledge looks up a glossary definition for a found sign.
// Failures are swallowed: enrichment never fails the primary result.
func enrichFromKnowledge(ctx context.Context, engine *retrieval.Engine, glosa string) *retrieval.Entry {
	candidates, err := engine.Retrieve(ctx, glosa, retrieval.ModeKnowledge)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	entry := candidates[0].Entry
	return &entry
}

// enrichFromSigns attaches a matching sign to a knowledge answer when
// the query happens to name one.
func enrichFromSigns(ctx context.Context, engine *retrieval.Engine, query string) *retrieval.Entry {
	candidates, err := engine.Retrieve(ctx, query, retrieval.ModeExactSign)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	entry := candidates[0].Entry
	return &entry
}
