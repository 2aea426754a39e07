package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/jsonx"
	corerr "github.com/signos-ai/signos/internal/errors"
)

const (
	// maxSelectedGlosas caps the arbitrated sign sequence length.
	maxSelectedGlosas = 5
	// fallbackTopN is returned when the model output is unusable.
	fallbackTopN = 3
)

const arbitrationSystemPrompt = `Eres un traductor experto de lengua de señas chilena (LSCh).
Tu tarea es seleccionar el subconjunto MINIMO de glosas necesario para transmitir el significado de una frase.
Reglas:
- Omite palabras funcionales gramaticales (artículos, preposiciones vacías).
- Prefiere palabras de contenido.
- Conserva el orden natural de la frase en señas.
- Máximo %d glosas.
- Responde ESTRICTAMENTE con un arreglo JSON de strings de glosas, por ejemplo ["HOLA","AGUA"]. Un arreglo vacío es válido.
- No agregues explicaciones ni texto adicional.`

// Arbiter reduces a noisy candidate list into the minimal ordered
// glosa sequence using the generative model, with a deterministic
// fallback when the model output is unusable.
type Arbiter struct {
	llm    ai.LLMService
	logger *slog.Logger
}

func NewArbiter(llm ai.LLMService, logger *slog.Logger) *Arbiter {
	return &Arbiter{llm: llm, logger: logger}
}

// Arbitrate selects and orders a subset of candidates for the original
// text. The returned entries are always a subset of the input, each
// glosa appearing at most once; the model's chosen order is preserved
// because it determines sign playback order. An empty candidate list
// returns empty without calling the model.
func (a *Arbiter) Arbitrate(ctx context.Context, originalText string, candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	selected, err := a.askModel(ctx, originalText, candidates)
	if err != nil {
		a.logger.Warn("arbitration fell back to top scored candidates",
			slog.String("reason", err.Error()),
			slog.String("error_code", string(corerr.CodeOf(err, corerr.ErrCodeUnparseableModelOutput))),
		)
		return topN(candidates, fallbackTopN)
	}
	return selected
}

func (a *Arbiter) askModel(ctx context.Context, originalText string, candidates []Candidate) ([]Candidate, error) {
	prompt := fmt.Sprintf("Frase original: %q\n\nCandidatos recuperados:\n%s\nSelecciona las glosas.",
		originalText, renderCandidateTable(candidates))

	reply, err := a.llm.Chat(ctx, []ai.Message{
		{Role: "system", Content: fmt.Sprintf(arbitrationSystemPrompt, maxSelectedGlosas)},
		{Role: "user", Content: prompt},
	}, ai.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}

	var glosas []string
	if err := jsonx.UnmarshalFirstArray(reply, &glosas); err != nil {
		return nil, err
	}

	byGlosa := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byGlosa[normalizeGlosa(c.Entry.Glosa)] = c
	}

	seen := make(map[string]bool, len(glosas))
	var selected []Candidate
	for _, g := range glosas {
		norm := normalizeGlosa(g)
		if norm == "" || seen[norm] {
			continue
		}
		candidate, ok := byGlosa[norm]
		if !ok {
			// A glosa outside the candidate set means the model is
			// hallucinating; distrust the whole selection.
			return nil, corerr.UnparseableModelOutput(
				fmt.Sprintf("model selected unknown glosa %q", g), nil)
		}
		seen[norm] = true
		selected = append(selected, candidate)
		if len(selected) == maxSelectedGlosas {
			break
		}
	}
	return selected, nil
}

// renderCandidateTable produces the compact table shown to the model.
func renderCandidateTable(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("GLOSA | TRADUCCIONES | SIMILITUD\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "%s | %s | %.2f\n",
			c.Entry.Glosa,
			strings.Join(c.Entry.Translations, ", "),
			c.Entry.Score,
		)
	}
	return b.String()
}

func topN(candidates []Candidate, n int) []Candidate {
	if len(candidates) < n {
		n = len(candidates)
	}
	return candidates[:n]
}

func normalizeGlosa(glosa string) string {
	return strings.ToUpper(strings.TrimSpace(glosa))
}
