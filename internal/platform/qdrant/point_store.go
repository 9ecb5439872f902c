package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/gradebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

const (
	payloadNamespaceKey = "_gb_namespace"
	payloadPointIDKey   = "_gb_point_id"
	maxErrorBodyBytes   = 1024
)

var pointIDNamespaceUUID = uuid.MustParse("6b1c7e52-93d4-4c1e-9a57-2f0e54c1d0a3")

// Point is a guideline vector with its payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Store is the subset of the Qdrant points API the guideline index needs.
type Store interface {
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]ScoredPoint, error)
	Scroll(ctx context.Context, limit int) ([]ScoredPoint, error)
	Count(ctx context.Context) (int, error)
}

type pointStore struct {
	log      *logger.Logger
	cfg      Config
	baseURL  string
	nsPrefix string
	distance string
	http     *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantPointItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

func NewStore(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	return newStore(ctx, log, cfg, nil)
}

func newStore(ctx context.Context, log *logger.Logger, cfg Config, client *http.Client) (*pointStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg, true); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	s := &pointStore{
		log:      log.With("service", "QdrantPointStore"),
		cfg:      cfg,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		nsPrefix: strings.TrimSpace(cfg.NamespacePrefix),
		http:     client,
	}

	if err := s.verifyReady(ctx); err != nil {
		return nil, err
	}

	log.Info(
		"Qdrant guideline store selected",
		"provider", "qdrant",
		"url", s.baseURL,
		"collection", cfg.Collection,
		"namespace_prefix", s.nsPrefix,
		"vector_dim", cfg.VectorDim,
		"distance", s.distance,
	)
	return s, nil
}

func (s *pointStore) Upsert(ctx context.Context, points []Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}

	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return opErr(op, OperationErrorValidation, "point id is required", nil)
		}
		if err := s.checkDim(op, p.Vector); err != nil {
			return err
		}
		payload := clonePayload(p.Payload)
		payload[payloadNamespaceKey] = s.nsPrefix
		payload[payloadPointIDKey] = id
		body = append(body, map[string]any{
			"id":      s.pointID(id),
			"vector":  p.Vector,
			"payload": payload,
		})
	}

	return s.doJSON(ctx, op, http.MethodPut, s.collectionPath("/points?wait=true"), map[string]any{"points": body}, nil)
}

// Search returns the nearest points. A positive threshold keeps only scores strictly
// above it; zero or below applies no floor.
func (s *pointStore) Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]ScoredPoint, error) {
	const op = "search"
	if err := s.checkDim(op, vector); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
		"filter":       s.namespaceFilter(),
	}
	if threshold > 0 && s.similarityScored() {
		req["score_threshold"] = threshold
	}

	var raw []qdrantPointItem
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/search"), req, &raw); err != nil {
		return nil, err
	}

	out := make([]ScoredPoint, 0, len(raw))
	for _, item := range raw {
		score := s.normalizeScore(item.Score)
		if threshold > 0 && score <= threshold {
			continue
		}
		out = append(out, ScoredPoint{
			ID:      s.extractPointID(item),
			Score:   score,
			Payload: stripInternal(item.Payload),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *pointStore) Scroll(ctx context.Context, limit int) ([]ScoredPoint, error) {
	const op = "scroll"
	if limit <= 0 {
		return []ScoredPoint{}, nil
	}
	req := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
		"filter":       s.namespaceFilter(),
	}
	var result struct {
		Points []qdrantPointItem `json:"points"`
	}
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/scroll"), req, &result); err != nil {
		return nil, err
	}
	out := make([]ScoredPoint, 0, len(result.Points))
	for _, item := range result.Points {
		out = append(out, ScoredPoint{
			ID:      s.extractPointID(item),
			Payload: stripInternal(item.Payload),
		})
	}
	return out, nil
}

func (s *pointStore) Count(ctx context.Context) (int, error) {
	const op = "count"
	req := map[string]any{
		"exact":  true,
		"filter": s.namespaceFilter(),
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := s.doJSON(ctx, op, http.MethodPost, s.collectionPath("/points/count"), req, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (s *pointStore) verifyReady(ctx context.Context) error {
	const op = "bootstrap_verify"

	readyReq, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, s.baseURL+"/readyz", nil)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build ready request failed", err)
	}
	readyResp, err := s.http.Do(readyReq)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = readyResp.Body.Close()
	if readyResp.StatusCode < 200 || readyResp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: readyResp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", readyResp.StatusCode),
		}
	}

	var result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	err = s.doJSON(ctx, op, http.MethodGet, s.collectionPath(""), nil, &result)
	if IsCollectionMissing(err) {
		if !s.cfg.CreateCollection {
			// Searches will surface as capability faults until the collection exists.
			s.log.Warn("Qdrant collection missing", "collection", s.cfg.Collection)
			return nil
		}
		return s.createCollection(ctx)
	}
	if err != nil {
		return err
	}

	size := result.Config.Params.Vectors.Size
	if size != 0 && size != s.cfg.VectorDim {
		return &OperationError{
			Code:      OperationErrorValidation,
			Operation: op,
			Message: fmt.Sprintf(
				"qdrant collection %q vector size mismatch: expected=%d actual=%d",
				s.cfg.Collection,
				s.cfg.VectorDim,
				size,
			),
		}
	}
	s.distance = strings.TrimSpace(result.Config.Params.Vectors.Distance)
	return nil
}

func (s *pointStore) createCollection(ctx context.Context) error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.cfg.VectorDim,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, "create_collection", http.MethodPut, s.collectionPath(""), req, nil); err != nil {
		return err
	}
	s.distance = "Cosine"
	s.log.Info("Qdrant collection created", "collection", s.cfg.Collection, "vector_dim", s.cfg.VectorDim)
	return nil
}

func (s *pointStore) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, s.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*maxErrorBodyBytes))
	if readErr != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode == http.StatusNotFound {
		return &OperationError{
			Code:       OperationErrorCollectionMissing,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant collection %q not found", s.cfg.Collection),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}

	if out == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}

	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}

	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return fmt.Sprintf("qdrant status=%s", status)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

func (s *pointStore) checkDim(op string, vec []float32) error {
	if len(vec) == 0 {
		return opErr(op, OperationErrorValidation, "vector required", nil)
	}
	if s.cfg.VectorDim > 0 && len(vec) != s.cfg.VectorDim {
		return opErr(
			op,
			OperationErrorDimensionMismatch,
			fmt.Sprintf("vector dimension mismatch: expected=%d got=%d", s.cfg.VectorDim, len(vec)),
			nil,
		)
	}
	return nil
}

func (s *pointStore) namespaceFilter() map[string]any {
	return map[string]any{
		"must": []any{
			map[string]any{
				"key":   payloadNamespaceKey,
				"match": map[string]any{"value": s.nsPrefix},
			},
		},
	}
}

func (s *pointStore) pointID(id string) string {
	return uuid.NewSHA1(pointIDNamespaceUUID, []byte(s.nsPrefix+"|"+id)).String()
}

func (s *pointStore) collectionPath(suffix string) string {
	return "/collections/" + s.cfg.Collection + suffix
}

func (s *pointStore) extractPointID(item qdrantPointItem) string {
	if id, ok := item.Payload[payloadPointIDKey].(string); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	return decodePointID(item.ID)
}

func decodePointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return strings.TrimSpace(idString)
	}
	var idNumber int64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

func (s *pointStore) similarityScored() bool {
	switch strings.ToLower(s.distance) {
	case "euclid", "manhattan":
		return false
	default:
		return true
	}
}

func (s *pointStore) normalizeScore(score float64) float64 {
	if s.similarityScored() {
		return score
	}
	if score < 0 {
		score = -score
	}
	return 1.0 / (1.0 + score)
}

func clonePayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stripInternal(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k == payloadNamespaceKey || k == payloadPointIDKey {
			continue
		}
		out[k] = v
	}
	return out
}
