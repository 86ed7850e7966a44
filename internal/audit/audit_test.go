package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
)

type memorySink struct {
	events []Event
	err    error
	closed bool
}

func (s *memorySink) Write(_ context.Context, ev Event) error {
	s.events = append(s.events, ev)
	return s.err
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewEvent(t *testing.T) {
	started := time.Now().Add(-time.Second)

	ok := NewEvent("device.synchronize", "dev1", started, nil)
	if ok.Outcome != OutcomeSuccess || ok.Error != "" {
		t.Errorf("unexpected event %+v", ok)
	}
	if ok.Duration < time.Second {
		t.Errorf("expected duration >= 1s, got %v", ok.Duration)
	}

	failed := NewEvent("device.synchronize", "dev1", started, errors.New("boom"))
	if failed.Outcome != OutcomeFailure || failed.Error != "boom" {
		t.Errorf("unexpected event %+v", failed)
	}
	if failed.ID == ok.ID {
		t.Error("events must have distinct ids")
	}
}

func TestRecorder_TrackFansOut(t *testing.T) {
	a := &memorySink{}
	b := &memorySink{err: errors.New("sink down")}
	rec := NewRecorder(discardLogger(), a, b)

	wantErr := errors.New("provd unavailable")
	err := rec.Track(context.Background(), "config.remove", "guest", func() error {
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected fn error to pass through, got %v", err)
	}

	for _, sink := range []*memorySink{a, b} {
		if len(sink.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(sink.events))
		}
		ev := sink.events[0]
		if ev.Action != "config.remove" || ev.Target != "guest" || ev.Outcome != OutcomeFailure {
			t.Errorf("unexpected event %+v", ev)
		}
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("expected sinks to be closed")
	}
}

func TestRecorder_Nil(t *testing.T) {
	var rec *Recorder

	called := false
	err := rec.Track(context.Background(), "plugin.update", "", func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("nil recorder must still run fn: %v %t", err, called)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	ev := NewEvent("param.set", "locale", time.Now(), nil)
	if err := sink.Write(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"action":"param.set"`) || !strings.Contains(out, ev.ID.String()) {
		t.Errorf("unexpected log output %s", out)
	}
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPSink_Write(t *testing.T) {
	ch := &fakeChannel{}
	sink := &AMQPSink{channel: ch, logger: discardLogger()}

	ev := NewEvent("plugin.install", "xivo-aastra", time.Now(), nil)
	if err := sink.Write(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ch.exchange != Exchange || ch.key != "audit.plugin.install" {
		t.Errorf("unexpected destination %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.MessageId != ev.ID.String() || ch.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected publishing %+v", ch.msg)
	}

	var decoded Event
	if err := json.Unmarshal(ch.msg.Body, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.ID != ev.ID || decoded.Action != ev.Action {
		t.Errorf("unexpected body %+v", decoded)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.closed {
		t.Error("expected channel to be closed")
	}
}

type fakeExec struct {
	queries []string
	args    [][]any
	err     error
}

func (e *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.queries = append(e.queries, sql)
	e.args = append(e.args, args)
	return pgconn.CommandTag{}, e.err
}

func TestPGSink(t *testing.T) {
	db := &fakeExec{}
	sink := &PGSink{db: db}

	if err := sink.ensureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := NewEvent("device.remove", "dev1", time.Now(), errors.New("not found"))
	if err := sink.Write(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(db.queries) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(db.queries))
	}
	if !strings.Contains(db.queries[0], "CREATE TABLE IF NOT EXISTS provd_cli_audit") {
		t.Errorf("unexpected schema statement %s", db.queries[0])
	}

	args := db.args[1]
	if args[0] != ev.ID || args[2] != "device.remove" || args[4] != "failure" || args[5] != "not found" {
		t.Errorf("unexpected insert args %v", args)
	}
}

func TestPGSink_WriteError(t *testing.T) {
	sink := &PGSink{db: &fakeExec{err: errors.New("connection reset")}}

	err := sink.Write(context.Background(), NewEvent("x", "", time.Now(), nil))
	if err == nil || !strings.Contains(err.Error(), "insert audit event") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
