package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubBroadcastOrderingAndClose(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelEvaluations)

	hub.Broadcast(SSEMessage{Channel: ChannelEvaluations, Event: SSEEventEvaluationCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: ChannelEvaluations, Event: SSEEventGuidelineStored, Data: map[string]any{"seq": 2}})
	hub.Broadcast(SSEMessage{Channel: "other", Event: SSEEventGuidelineStored})

	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventEvaluationCreated {
		t.Fatalf("first event: want=%s got=%s", SSEEventEvaluationCreated, got.Event)
	}
	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventGuidelineStored {
		t.Fatalf("second event: want=%s got=%s", SSEEventGuidelineStored, got.Event)
	}

	hub.CloseClient(client)
	hub.CloseClient(client)
	if n := hub.Subscribers(ChannelEvaluations); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelEvaluations)

	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: ChannelEvaluations, Event: SSEEventEvaluationCreated})
	}
	if len(client.Outbound) != cap(client.Outbound) {
		t.Fatalf("buffer: want=%d got=%d", cap(client.Outbound), len(client.Outbound))
	}
}

func TestSSEHubServeHTTPWritesEvent(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelEvaluations)
	client.Outbound <- SSEMessage{Channel: ChannelEvaluations, Event: SSEEventEvaluationCreated, Data: map[string]any{"grade": "A"}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	hub.ServeHTTP(rec, req, client)

	body := rec.Body.String()
	if !strings.Contains(body, "event: EvaluationCreated") || !strings.Contains(body, `"grade":"A"`) {
		t.Fatalf("stream body: got=%q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got=%q", ct)
	}
}

func TestParseChannels(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "single", raw: "evaluations", want: []string{ChannelEvaluations}},
		{name: "trim case dedupe", raw: " Guidelines ,evaluations,guidelines,", want: []string{ChannelGuidelines, ChannelEvaluations}},
		{name: "unknown", raw: "evaluations,grades", wantErr: true},
		{name: "only blanks", raw: " , ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChannels(tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err: wantErr=%v got=%v", tc.wantErr, err)
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("channels: want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestSSEHubStampsEventIDs(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelGuidelines)
	hub.Broadcast(SSEMessage{Channel: ChannelGuidelines, Event: SSEEventGuidelineStored})
	hub.Broadcast(SSEMessage{Channel: ChannelGuidelines, Event: SSEEventGuidelineStored})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, req, client)

	body := rec.Body.String()
	for _, want := range []string{"retry: 5000", "id: 1\nevent: GuidelineStored", "id: 2\nevent: GuidelineStored"} {
		if !strings.Contains(body, want) {
			t.Fatalf("stream body missing %q: got=%q", want, body)
		}
	}
}
