package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, mutate func(*Config)) Client {
	t.Helper()
	cfg := Config{
		APIKey:          "sk-test",
		BaseURL:         "http://openai.test",
		Model:           "gpt-4o-mini",
		EmbedModel:      "text-embedding-3-small",
		EmbedDimensions: 3,
		Temperature:     0.1,
		MaxRetries:      2,
		MaxBackoff:      time.Millisecond,
		HTTPClient:      &http.Client{Transport: rt},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestEmbedOrdersByIndex(t *testing.T) {
	var gotBody embeddingsRequest
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/embeddings" {
			t.Fatalf("path: want=%q got=%q", "/v1/embeddings", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("auth header: got=%q", got)
		}
		if err := json.NewDecoder(req.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(200, `{"data":[{"index":1,"embedding":[0,1,0]},{"index":0,"embedding":[1,0,0]}]}`), nil
	}, nil)

	vecs, err := c.Embed(context.Background(), []string{"first", "  "})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if gotBody.Dimensions != 3 {
		t.Fatalf("dimensions: want=3 got=%d", gotBody.Dimensions)
	}
	if gotBody.Input[1] != " " {
		t.Fatalf("blank input: want=%q got=%q", " ", gotBody.Input[1])
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Fatalf("order: got=%v", vecs)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"data":[{"index":0,"embedding":[1,0]}]}`), nil
	}, nil)
	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestEmbedRetriesOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return jsonResponse(503, `{"error":"busy"}`), nil
		}
		return jsonResponse(200, `{"data":[{"index":0,"embedding":[1,0,0]}]}`), nil
	}, nil)
	if _, err := c.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
}

func TestEmbedDoesNotRetryClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(400, `{"error":"bad"}`), nil
	}, nil)
	_, err := c.Embed(context.Background(), []string{"x"})
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		t.Fatalf("error: want http 400 got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestRetryAbandonedWhenWaitOutlivesDeadline(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		resp := jsonResponse(429, `{"error":"slow down"}`)
		resp.Header.Set("Retry-After", "30")
		return resp, nil
	}, func(cfg *Config) { cfg.MaxBackoff = time.Minute })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	_, err := c.Embed(ctx, []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "abandoned") {
		t.Fatalf("error: want abandoned retry got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("returned late: elapsed=%s", elapsed)
	}
}

const gradeOutput = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"score\":\"8\",\"grade\":\"B\"}"}]}],"usage":{"input_tokens":10,"output_tokens":5}}`

func TestGenerateJSONStrictSchema(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/responses" {
			t.Fatalf("path: got=%q", req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return jsonResponse(200, gradeOutput), nil
	}, nil)

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "evaluation", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["grade"] != "B" {
		t.Fatalf("grade: want=B got=%v", obj["grade"])
	}
	format := got["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "evaluation" {
		t.Fatalf("format: got=%v", format)
	}
	if got["temperature"] != 0.1 {
		t.Fatalf("temperature: want=0.1 got=%v", got["temperature"])
	}
}

func TestGenerateJSONDropsTemperatureWhenRejected(t *testing.T) {
	var calls int32
	var lastHadTemp bool
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		_, lastHadTemp = body["temperature"]
		if atomic.AddInt32(&calls, 1) == 1 {
			return jsonResponse(400, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`), nil
		}
		return jsonResponse(200, gradeOutput), nil
	}, nil)

	if _, err := c.GenerateJSON(context.Background(), "s", "u", "evaluation", map[string]any{}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls != 2 || lastHadTemp {
		t.Fatalf("fallback: calls=%d lastHadTemp=%v", calls, lastHadTemp)
	}
}

func TestGenerateJSONSkipsTemperatureForNoTempModel(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		if _, ok := body["temperature"]; ok {
			t.Fatalf("temperature sent for no-temp model")
		}
		return jsonResponse(200, gradeOutput), nil
	}, func(cfg *Config) {
		cfg.Model = "o3-mini"
		cfg.NoTemperatureModels = "o3-*"
	})
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "evaluation", map[string]any{}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
}

func TestGenerateJSONFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "refusal", body: `{"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"no"}]}]}`},
		{name: "empty", body: `{"output":[]}`},
		{name: "not json", body: `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"score: 8"}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, tc.body), nil
			}, nil)
			if _, err := c.GenerateJSON(context.Background(), "s", "u", "evaluation", map[string]any{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestExtractUsageFromRaw(t *testing.T) {
	in, out := extractUsageFromRaw([]byte(`{"usage":{"prompt_tokens":7,"completion_tokens":3}}`))
	if in != 7 || out != 3 {
		t.Fatalf("usage: want=7/3 got=%d/%d", in, out)
	}
}

func TestIsUnsupportedTemperatureMessage(t *testing.T) {
	if !isUnsupportedTemperatureMessage("temperature does not support 0.1 with this model") {
		t.Fatalf("expected match")
	}
	if isUnsupportedTemperatureMessage("rate limited") {
		t.Fatalf("unexpected match")
	}
}
