package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkuzmin/docanalyst/internal/core/domain"
)

// Client is a REST client for Qdrant implementing the vector index port.
// One Client serves any number of collections; all collections share the
// configured vector size and cosine distance.
type Client struct {
	baseURL    string
	vectorSize int
	httpClient *http.Client

	ensureMu sync.Mutex
	ensured  map[string]int
}

func New(baseURL string, vectorSize int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		ensured:    make(map[string]int),
	}
}

func (c *Client) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	c.ensureMu.Lock()
	if size, ok := c.ensured[collection]; ok && size == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return domain.WrapError(domain.ErrIndex, "ensure collection", fmt.Errorf("marshal create body: %w", err))
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return domain.WrapError(domain.ErrIndex, "ensure collection", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrIndex, fmt.Sprintf("ensure collection %q", collection), err)
	}
	defer resp.Body.Close()

	// 200/201 on create; 409 when the collection already exists.
	if resp.StatusCode == http.StatusConflict {
		c.markEnsured(collection, vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrIndex, fmt.Sprintf("ensure collection %q", collection), statusError(resp))
	}
	c.markEnsured(collection, vectorSize)
	return nil
}

func (c *Client) Store(ctx context.Context, collection, text string, vector []float32, metadata map[string]any) (string, error) {
	if len(vector) != c.vectorSize {
		return "", domain.WrapError(
			domain.ErrIndex,
			fmt.Sprintf("store chunk in %q", collection),
			fmt.Errorf("vector size %d does not match collection size %d", len(vector), c.vectorSize),
		)
	}

	payload := map[string]any{"text": text}
	for key, value := range metadata {
		payload[key] = value
	}

	id := uuid.NewString()
	reqBody := map[string]any{
		"points": []map[string]any{
			{
				"id":      id,
				"vector":  vector,
				"payload": payload,
			},
		},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, collection)
	if err := c.send(ctx, http.MethodPut, url, reqBody, nil); err != nil {
		return "", domain.WrapError(domain.ErrIndex, fmt.Sprintf("store chunk in %q", collection), err)
	}
	return id, nil
}

func (c *Client) Search(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedSource, error) {
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	err := c.send(ctx, http.MethodPost, url, reqBody, &searchResp)
	if err != nil {
		// A collection that was never ingested into is not an error for
		// retrieval; it simply has nothing to offer.
		if isNotFound(err) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrIndex, fmt.Sprintf("search collection %q", collection), err)
	}

	out := make([]domain.RetrievedSource, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedSource{
			Text:     getStringPayload(r.Payload, "text"),
			Score:    r.Score,
			Filename: getStringPayload(r.Payload, "filename"),
		})
	}
	return out, nil
}

// Delete reports whether the collection accepted the deletion. Qdrant
// acknowledges deletes of ids it has never seen, so true does not imply
// a point was actually removed; false means the collection is missing.
func (c *Client) Delete(ctx context.Context, collection, id string) (bool, error) {
	reqBody := map[string]any{
		"points": []string{id},
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, collection)
	if err := c.send(ctx, http.MethodPost, url, reqBody, nil); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, domain.WrapError(domain.ErrIndex, fmt.Sprintf("delete chunk from %q", collection), err)
	}
	return true, nil
}

// Ping reports whether the backend is reachable and the collection is
// initialized, for the health endpoint.
func (c *Client) Ping(ctx context.Context, collection string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.WrapError(domain.ErrIndex, "ping", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrIndex, "ping", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrIndex, "ping", fmt.Errorf("collection %q is not initialized", collection))
	}
	if resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrIndex, "ping", statusError(resp))
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) markEnsured(collection string, vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensured[collection] = vectorSize
}

type httpStatusError struct {
	statusCode int
	status     string
	body       string
}

func (e *httpStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("qdrant status: %s", e.status)
	}
	return fmt.Sprintf("qdrant status: %s: %s", e.status, e.body)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &httpStatusError{
		statusCode: resp.StatusCode,
		status:     resp.Status,
		body:       strings.TrimSpace(string(raw)),
	}
}

func isNotFound(err error) bool {
	var statusErr *httpStatusError
	return errors.As(err, &statusErr) && statusErr.statusCode == http.StatusNotFound
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
