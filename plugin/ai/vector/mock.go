package vector

import "context"

// MockIndex serves canned results for tests. Scores returns the fixed
// result set regardless of the query vector; Fail forces the error path.
type MockIndex struct {
	Results []Result
	Err     error
	Queries int
}

func (m *MockIndex) Query(_ context.Context, _ []float32, topK int, filter map[string]string) ([]Result, error) {
	m.Queries++
	if m.Err != nil {
		return nil, m.Err
	}

	var out []Result
	for _, r := range m.Results {
		if !matchesFilter(r, filter) {
			continue
		}
		out = append(out, r)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func (m *MockIndex) GetByIDs(_ context.Context, ids []string) ([]Result, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []Result
	for _, r := range m.Results {
		if wanted[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchesFilter(r Result, filter map[string]string) bool {
	for key, value := range filter {
		got, ok := r.Metadata[key].(string)
		if !ok || got != value {
			return false
		}
	}
	return true
}
