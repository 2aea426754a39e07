// Package queryengine classifies free-text queries into retrieval
// intents. The classifier here is deterministic and pattern-based; the
// agent keeps a model-driven twin of it and falls back to this one when
// the model path is unavailable or unparseable.
package queryengine

import (
	"regexp"
	"strings"
)

// IntentKind enumerates the classification outcomes.
type IntentKind string

const (
	// IntentNone means general chat, no retrieval.
	IntentNone IntentKind = "none"
	// IntentSignLookup means the user wants one or more specific signs.
	IntentSignLookup IntentKind = "sign_lookup"
	// IntentKnowledge means the user wants explanatory content.
	IntentKnowledge IntentKind = "knowledge"
	// IntentHybrid means one utterance needs both a sign and knowledge.
	IntentHybrid IntentKind = "hybrid"
)

// Intent is the classification of one utterance.
type Intent struct {
	Kind IntentKind
	// SignTerm is the extracted term for sign lookups and hybrids.
	SignTerm string
	// Query is the knowledge query text for knowledge and hybrid intents.
	Query string
}

// Rules are evaluated in order; the first match wins. Order is the
// tie-break and must not change.
var signPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)c[oó]mo se (?:dice|se[ñn]a|hace la se[ñn]a de)\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)c[oó]mo (?:digo|se[ñn]o)\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)se[ñn]as?\s+(?:para|de)\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)qu[eé] significa\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)how do (?:you|i) sign\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)(?:the )?sign for\s+(.+?)\s*\??$`),
	regexp.MustCompile(`(?i)what does\s+(.+?)\s+mean\s*\??$`),
	regexp.MustCompile(`(?i)show me (?:the sign for\s+)?(.+?)\s*\??$`),
}

var knowledgePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*qu[eé] es\b`),
	regexp.MustCompile(`(?i)^\s*qu[eé] son\b`),
	regexp.MustCompile(`(?i)^\s*cu[aá]l es\b`),
	regexp.MustCompile(`(?i)\bexpl[ií]ca(?:me)?\b`),
	regexp.MustCompile(`(?i)^\s*what (?:is|are)\b`),
	regexp.MustCompile(`(?i)\bexplain\b`),
	regexp.MustCompile(`(?i)\btell me about\b`),
}

var knowledgeKeywords = []string{
	"historia", "cultura", "gramática", "gramatica", "organizaciones",
	"dactilología", "dactilologia", "expresión facial", "expresion facial",
	"comunidad sorda", "consejos para aprender",
	"history", "culture", "grammar", "organizations", "fingerspelling",
	"facial expression", "deaf community", "learning tips",
}

// conjunctionSplit detects a sign-lookup phrase joined to a
// knowledge-style follow-up clause in the same utterance.
var conjunctionSplit = regexp.MustCompile(`(?i)\s+(?:y|and)\s+((?:qu[eé]|cu[aá]l|what|explain|expl[ií]ca).*)$`)

var questionWords = []string{
	"qué", "que", "cómo", "como", "cuál", "cual", "quién", "quien",
	"dónde", "donde", "por qué", "cuándo", "cuando",
	"what", "how", "which", "who", "where", "why", "when",
}

var signVerbs = []string{
	"seña", "sena", "dice", "digo", "significa",
	"sign", "mean", "means", "show",
}

var stopWords = map[string]bool{
	"para": true, "pero": true, "este": true, "esta": true, "esto": true,
	"cómo": true, "como": true, "qué": true, "que": true, "cuál": true,
	"cual": true, "with": true, "what": true, "this": true,
	"that": true, "have": true, "does": true, "mean": true, "show": true,
	"sign": true, "dice": true, "favor": true,
}

// Classify maps free text to a retrieval intent. It is total: every
// input, including empty and pure punctuation, yields a classification.
func Classify(text string) Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Intent{Kind: IntentNone}
	}
	lower := strings.ToLower(trimmed)

	// Rule 1: sign-lookup phrasings. A conjunction followed by a
	// knowledge-style clause inside the captured term upgrades the
	// match to hybrid (rule 3) with the pre-conjunction term.
	for _, p := range signPatterns {
		m := p.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(m[1])
		if split := conjunctionSplit.FindStringSubmatchIndex(term); split != nil {
			return Intent{
				Kind:     IntentHybrid,
				SignTerm: strings.TrimSpace(term[:split[0]]),
				Query:    trimmed,
			}
		}
		return Intent{Kind: IntentSignLookup, SignTerm: term}
	}

	// Rule 2: knowledge phrasings and fixed keywords.
	for _, p := range knowledgePatterns {
		if p.MatchString(trimmed) {
			return Intent{Kind: IntentKnowledge, Query: trimmed}
		}
	}
	for _, kw := range knowledgeKeywords {
		if strings.Contains(lower, kw) {
			return Intent{Kind: IntentKnowledge, Query: trimmed}
		}
	}

	// Rule 4: content word + question word heuristic.
	if hasContentWord(lower) && hasAny(lower, questionWords) {
		if hasAny(lower, signVerbs) {
			return Intent{Kind: IntentSignLookup, SignTerm: trimmed}
		}
		return Intent{Kind: IntentKnowledge, Query: trimmed}
	}

	return Intent{Kind: IntentNone}
}

func hasContentWord(lower string) bool {
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if len([]rune(tok)) > 3 && !stopWords[tok] {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == 'ñ' || r == 'á' || r == 'é' || r == 'í' || r == 'ó' || r == 'ú' ||
		(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func hasAny(lower string, words []string) bool {
	for _, w := range words {
		if containsWord(lower, w) {
			return true
		}
	}
	return false
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isWordRune(rune(lower[idx-1]))
		end := idx + len(word)
		after := end >= len(lower) || !isWordRune(rune(lower[end]))
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}
