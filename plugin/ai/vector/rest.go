package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	corerr "github.com/signos-ai/signos/internal/errors"
)

// RESTIndex talks to a Vectorize-style HTTP index.
type RESTIndex struct {
	baseURL    string
	apiToken   string
	indexName  string
	httpClient *http.Client
}

// NewRESTIndex creates a client for one named remote index.
func NewRESTIndex(baseURL, apiToken, indexName string) *RESTIndex {
	return &RESTIndex{
		baseURL:   baseURL,
		apiToken:  apiToken,
		indexName: indexName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type restQueryRequest struct {
	Vector         []float32         `json:"vector"`
	TopK           int               `json:"topK"`
	Filter         map[string]string `json:"filter,omitempty"`
	ReturnMetadata bool              `json:"returnMetadata"`
}

type restMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type restQueryResponse struct {
	Result struct {
		Matches []restMatch `json:"matches"`
	} `json:"result"`
	Success bool `json:"success"`
}

func (x *RESTIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]string) ([]Result, error) {
	if len(vec) == 0 {
		return nil, corerr.InvalidInput("query vector is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	reqBody := restQueryRequest{
		Vector:         vec,
		TopK:           topK,
		Filter:         filter,
		ReturnMetadata: true,
	}
	var resp restQueryResponse
	path := fmt.Sprintf("/indexes/%s/query", x.indexName)
	if err := x.post(ctx, path, reqBody, &resp); err != nil {
		return nil, err
	}
	return toResults(resp.Result.Matches), nil
}

type restGetByIDsRequest struct {
	IDs []string `json:"ids"`
}

type restGetByIDsResponse struct {
	Result  []restMatch `json:"result"`
	Success bool        `json:"success"`
}

func (x *RESTIndex) GetByIDs(ctx context.Context, ids []string) ([]Result, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp restGetByIDsResponse
	path := fmt.Sprintf("/indexes/%s/get_by_ids", x.indexName)
	if err := x.post(ctx, path, restGetByIDsRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return toResults(resp.Result), nil
}

func (x *RESTIndex) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return corerr.RetrievalUnavailable("marshal index request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return corerr.RetrievalUnavailable("build index request", err)
	}
	req.Header.Set("Authorization", "Bearer "+x.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return corerr.RetrievalUnavailable("index request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return corerr.RetrievalUnavailable("read index response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return corerr.RetrievalUnavailable(
			fmt.Sprintf("index endpoint returned status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(body, respBody); err != nil {
		return corerr.RetrievalUnavailable("decode index response",
			errors.Wrap(err, "unexpected payload"))
	}
	return nil
}

func toResults(matches []restMatch) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return results
}
