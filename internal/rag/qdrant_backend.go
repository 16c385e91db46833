package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyplanner/internal/logger"
)

const qdrantUpsertBatch = 64

var errQdrantNotFound = errors.New("qdrant resource not found")

type QdrantConfig struct {
	BaseURL    string
	APIKey     string
	Alias      string
	Dimensions int
	Timeout    time.Duration
}

// QdrantBackend stores chunks in Qdrant behind a collection alias. Replace
// builds a fresh physical collection, repoints the alias in a single alias
// operation and then drops the previous collection.
type QdrantBackend struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	alias      string
	dim        int
	log        *logger.Logger
}

func NewQdrantBackend(cfg QdrantConfig, log *logger.Logger) (*QdrantBackend, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid qdrant url %q", cfg.BaseURL)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse qdrant url failed: %w", err)
	}
	if strings.TrimSpace(cfg.Alias) == "" {
		return nil, errors.New("qdrant collection alias is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &QdrantBackend{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		alias:      cfg.Alias,
		dim:        cfg.Dimensions,
		log:        log,
	}, nil
}

func (b *QdrantBackend) Name() string { return "qdrant" }

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

func (b *QdrantBackend) Replace(ctx context.Context, records []Record) error {
	size := b.dim
	if len(records) > 0 {
		size = len(records[0].Vector)
	}
	if size <= 0 {
		return errors.New("qdrant vector size must be positive")
	}

	previous, err := b.aliasTarget(ctx)
	if err != nil {
		return err
	}

	next := b.alias + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := b.createCollection(ctx, next, size); err != nil {
		return err
	}
	if err := b.upsert(ctx, next, records); err != nil {
		b.dropCollection(ctx, next)
		return err
	}
	if err := b.swapAlias(ctx, next, previous != ""); err != nil {
		b.dropCollection(ctx, next)
		return err
	}
	if previous != "" && previous != next {
		b.dropCollection(ctx, previous)
	}
	return nil
}

func (b *QdrantBackend) Query(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	payload := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var decoded struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := b.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(b.alias)+"/points/search", payload, &decoded)
	if errors.Is(err, errQdrantNotFound) {
		// nothing indexed yet
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(decoded.Result))
	for _, item := range decoded.Result {
		text, _ := item.Payload["text"].(string)
		id, _ := item.Payload["chunk_id"].(string)
		if id == "" {
			id = fmt.Sprint(item.ID)
		}
		results = append(results, Result{
			ID:   id,
			Text: text,
			Metadata: map[string]any{
				"source":      item.Payload["source"],
				"chunk_index": intField(item.Payload, "chunk_index"),
			},
			Score: item.Score,
		})
	}
	return results, nil
}

func (b *QdrantBackend) aliasTarget(ctx context.Context) (string, error) {
	var decoded struct {
		Result struct {
			Aliases []struct {
				AliasName      string `json:"alias_name"`
				CollectionName string `json:"collection_name"`
			} `json:"aliases"`
		} `json:"result"`
	}
	if err := b.do(ctx, http.MethodGet, "/aliases", nil, &decoded); err != nil {
		return "", err
	}
	for _, a := range decoded.Result.Aliases {
		if a.AliasName == b.alias {
			return a.CollectionName, nil
		}
	}
	return "", nil
}

func (b *QdrantBackend) createCollection(ctx context.Context, name string, size int) error {
	payload := map[string]any{
		"vectors": map[string]any{
			"size":     size,
			"distance": "Cosine",
		},
	}
	if err := b.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(name), payload, nil); err != nil {
		return fmt.Errorf("create qdrant collection %s failed: %w", name, err)
	}
	return nil
}

func (b *QdrantBackend) upsert(ctx context.Context, collection string, records []Record) error {
	for start := 0; start < len(records); start += qdrantUpsertBatch {
		end := start + qdrantUpsertBatch
		if end > len(records) {
			end = len(records)
		}
		points := make([]qdrantPoint, 0, end-start)
		for _, rec := range records[start:end] {
			points = append(points, qdrantPoint{
				ID:     PointID(rec.ID),
				Vector: rec.Vector,
				Payload: map[string]any{
					"chunk_id":    rec.ID,
					"text":        rec.Text,
					"source":      rec.Metadata["source"],
					"chunk_index": rec.Metadata["chunk_index"],
				},
			})
		}
		path := "/collections/" + url.PathEscape(collection) + "/points?wait=true"
		if err := b.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil); err != nil {
			return fmt.Errorf("upsert qdrant points failed: %w", err)
		}
	}
	return nil
}

func (b *QdrantBackend) swapAlias(ctx context.Context, collection string, hadAlias bool) error {
	actions := make([]map[string]any, 0, 2)
	if hadAlias {
		actions = append(actions, map[string]any{
			"delete_alias": map[string]any{"alias_name": b.alias},
		})
	}
	actions = append(actions, map[string]any{
		"create_alias": map[string]any{"collection_name": collection, "alias_name": b.alias},
	})
	if err := b.do(ctx, http.MethodPost, "/collections/aliases", map[string]any{"actions": actions}, nil); err != nil {
		return fmt.Errorf("swap qdrant alias failed: %w", err)
	}
	return nil
}

func (b *QdrantBackend) dropCollection(ctx context.Context, name string) {
	if err := b.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil, nil); err != nil {
		b.log.Warn("drop qdrant collection failed", "collection", name, "error", err)
	}
}

func (b *QdrantBackend) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return fmt.Errorf("encode qdrant payload failed: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("api-key", b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errQdrantNotFound
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s status %s: %s", method, path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode qdrant response failed: %w", err)
	}
	return nil
}

// PointID maps a chunk id to a stable UUIDv5 point id.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
