package retrieval

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MediaRef points at one renderable frame of a sign. Paths are passed
// through to the media layer unmodified.
type MediaRef struct {
	Path     string `json:"path"`
	Sequence int    `json:"sequence"`
}

// Entry is a retrievable record, either a sign or a knowledge chunk.
// Entries are immutable once indexed; Score is populated at query time
// only.
type Entry struct {
	ID           string     `json:"id"`
	Glosa        string     `json:"glosa"`
	Definition   string     `json:"definition"`
	Media        []MediaRef `json:"media"`
	Translations []string   `json:"translations,omitempty"`
	Category     string     `json:"category,omitempty"`
	Variant      int        `json:"variant,omitempty"`
	Score        float64    `json:"score"`
}

// Valid reports whether the entry carries at least one of definition
// text or a media reference. Invalid entries are filtered before
// arbitration.
func (e *Entry) Valid() bool {
	return strings.TrimSpace(e.Definition) != "" || len(e.Media) > 0
}

// Candidate wraps an Entry with the index it came from. Transient,
// lives only for the duration of one query.
type Candidate struct {
	Entry     Entry
	IndexName string
}

// entryFromMetadata builds an Entry from the denormalized metadata
// stored alongside each vector. The images field is an embedded
// JSON-serialized list; a parse failure degrades that entry to an
// empty media list instead of discarding it.
func entryFromMetadata(id string, score float64, metadata map[string]any) Entry {
	entry := Entry{
		ID:         id,
		Glosa:      metaString(metadata, "glosa"),
		Definition: metaString(metadata, "definition"),
		Category:   metaString(metadata, "category"),
		Variant:    metaInt(metadata, "variant"),
		Score:      score,
	}
	if entry.Glosa == "" {
		entry.Glosa = metaString(metadata, "title")
	}
	if entry.Definition == "" {
		entry.Definition = metaString(metadata, "text")
	}
	if raw := metaString(metadata, "translations"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				entry.Translations = append(entry.Translations, t)
			}
		}
	}
	entry.Media = parseMediaList(metaString(metadata, "images"))
	return entry
}

// parseMediaList accepts the two serializations seen in the wild: a
// list of bare path strings, or a list of {path, sequence} objects.
func parseMediaList(raw string) []MediaRef {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var objects []MediaRef
	if err := json.Unmarshal([]byte(raw), &objects); err == nil {
		return objects
	}

	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err == nil {
		media := make([]MediaRef, 0, len(paths))
		for i, p := range paths {
			media = append(media, MediaRef{Path: p, Sequence: i})
		}
		return media
	}

	return nil
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

// metaInt reads a numeric metadata field. JSON decoding delivers
// numbers as float64; older index uploads stored them as strings.
func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
