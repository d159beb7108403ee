package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/pkg/routes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStream struct {
	args   []*redis.XAddArgs
	err    error
	closed bool
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestMemoryRecordsEventAndAudit(t *testing.T) {
	m := events.NewMemory(discard(), nil)
	doc := uuid.New()

	for _, typ := range []events.Type{events.ExtractRetry, events.ExtractStart, events.ExtractReady} {
		if err := m.Record(context.Background(), events.Event{DocumentID: doc, Type: typ, Message: string(typ)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	m.Record(context.Background(), events.Event{DocumentID: uuid.New(), Type: events.ExtractStart})

	got := m.Types(doc)
	want := []events.Type{events.ExtractRetry, events.ExtractStart, events.ExtractReady}
	if len(got) != len(want) {
		t.Fatalf("types: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if m.AuditCount() != 4 {
		t.Errorf("audit entries: got %d, want 4", m.AuditCount())
	}

	list, _ := m.ListByDocument(context.Background(), doc)
	if list[0].ID == uuid.Nil || list[0].CreatedAt.IsZero() {
		t.Error("recorded events should be stamped with id and time")
	}
}

func TestRedisPublisher(t *testing.T) {
	stream := &fakeStream{}
	p := events.NewRedisPublisher(stream, "loadextract:events")

	doc := uuid.New()
	if err := p.Publish(context.Background(), events.Event{DocumentID: doc, Type: events.ExtractOCRDone, Message: "ocrmypdf"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(stream.args) != 1 {
		t.Fatalf("xadd calls: got %d", len(stream.args))
	}
	a := stream.args[0]
	if a.Stream != "loadextract:events" || !a.Approx {
		t.Errorf("unexpected args: %+v", a)
	}
	values := a.Values.(map[string]any)
	if values["type"] != "EXTRACT_OCR_DONE" || values["documentId"] != doc.String() {
		t.Errorf("values: %v", values)
	}

	p.Close()
	if !stream.closed {
		t.Error("close should close the client")
	}
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := events.NewKafkaPublisher(w)

	doc := uuid.New()
	if err := p.Publish(context.Background(), events.Event{DocumentID: doc, Type: events.ExtractFailed, Message: "boom"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages: got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != doc.String() {
		t.Errorf("key: got %s", w.msgs[0].Key)
	}

	var e events.Event
	if err := json.Unmarshal(w.msgs[0].Value, &e); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if e.Type != events.ExtractFailed || e.Message != "boom" {
		t.Errorf("decoded event: %+v", e)
	}
}

func TestFanout(t *testing.T) {
	if events.Fanout(nil, nil) != nil {
		t.Error("fanout of nothing should be nil")
	}

	stream := &fakeStream{err: errors.New("redis down")}
	w := &fakeWriter{}
	p := events.Fanout(events.NewRedisPublisher(stream, "s"), nil, events.NewKafkaPublisher(w))

	err := p.Publish(context.Background(), events.Event{Type: events.ExtractStart})
	if err == nil {
		t.Error("expected joined error from failing publisher")
	}
	if len(w.msgs) != 1 {
		t.Error("a failing publisher must not block the others")
	}

	p.Close()
	if !stream.closed || !w.closed {
		t.Error("fanout close should close every publisher")
	}
}

func TestPublishFailureDoesNotFailRecord(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	m := events.NewMemory(discard(), events.NewKafkaPublisher(w))

	if err := m.Record(context.Background(), events.Event{DocumentID: uuid.New(), Type: events.ExtractStart}); err != nil {
		t.Errorf("record should succeed when publish fails: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Errorf("publish attempts: got %d, want 1", len(w.msgs))
	}
}

func TestHandlerList(t *testing.T) {
	m := events.NewMemory(discard(), nil)
	doc := uuid.New()
	m.Record(context.Background(), events.Event{DocumentID: doc, Type: events.ExtractStart})
	m.Record(context.Background(), events.Event{DocumentID: doc, Type: events.ExtractReview})

	mux := http.NewServeMux()
	routes.Register(mux, m.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/"+doc.String()+"/events", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var list []events.Event
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[1].Type != events.ExtractReview {
		t.Errorf("unexpected list: %+v", list)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/xyz/events", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rec.Code)
	}
}
