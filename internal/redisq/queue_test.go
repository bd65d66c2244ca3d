package redisq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/funckabots/internal/mq"
	"github.com/shaiso/funckabots/internal/telemetry"
)

const testPoll = 20 * time.Millisecond

func newTestQueue(t *testing.T, cfg Config) (*Queue, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg), mr
}

func TestQueue_PublishListen(t *testing.T) {
	q, _ := newTestQueue(t, Config{})
	ctx := context.Background()

	status, err := q.Publish(ctx, map[string]any{"a": 1}, "q1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if status != mq.StatusAcked {
		t.Errorf("expected acked, got %s", status)
	}

	for obj, err := range q.Listen(ctx, "q1", testPoll) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(obj, map[string]any{"a": 1}) {
			t.Errorf("expected {a:1}, got %v", obj)
		}
		break
	}

	n, err := q.Depth(ctx, "q1")
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if n != 0 {
		t.Errorf("message should be removed on receipt, %d left", n)
	}
}

func TestQueue_KeyPrefix(t *testing.T) {
	q, mr := newTestQueue(t, Config{KeyPrefix: "test:"})

	if _, err := q.Publish(context.Background(), "x", "q1"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !mr.Exists("test:q1") {
		t.Errorf("expected list under prefixed key, keys: %v", mr.Keys())
	}
}

func TestQueue_PreservesOrder(t *testing.T) {
	q, _ := newTestQueue(t, Config{})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := q.Publish(ctx, i, "q1"); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	var got []any
	for obj, err := range q.Listen(ctx, "q1", testPoll) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, obj)
		if len(got) == 3 {
			break
		}
	}

	if !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}

func TestQueue_EmptyQueueWaits(t *testing.T) {
	reg := prometheus.NewRegistry()
	q, _ := newTestQueue(t, Config{Metrics: telemetry.NewBrokerMetrics(reg)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan any, 1)
	go func() {
		for obj, err := range q.Listen(ctx, "empty", testPoll) {
			if err == nil {
				out <- obj
			}
			return
		}
	}()

	select {
	case obj := <-out:
		t.Fatalf("empty queue should not yield, got %v", obj)
	case <-time.After(5 * testPoll):
	}

	if _, err := q.Publish(ctx, "late", "empty"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case obj := <-out:
		if obj != "late" {
			t.Errorf("expected late, got %v", obj)
		}
	case <-time.After(time.Second):
		t.Fatal("queue did not yield after publish")
	}

	series, err := testutil.GatherAndCount(reg, "funcka_broker_empty_polls_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if series != 1 {
		t.Errorf("expected empty poll series for queue, got %d", series)
	}
}

func TestQueue_DecodeErrorIsSignalled(t *testing.T) {
	q, mr := newTestQueue(t, Config{})
	ctx := context.Background()

	if _, err := mr.Push(DefaultKeyPrefix+"q1", "garbage"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := q.Publish(ctx, "ok", "q1"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var errs []error
	var objs []any
	for obj, err := range q.Listen(ctx, "q1", testPoll) {
		errs = append(errs, err)
		objs = append(objs, obj)
		if len(errs) == 2 {
			break
		}
	}

	if !errors.Is(errs[0], mq.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", errs[0])
	}
	if errs[1] != nil || objs[1] != "ok" {
		t.Errorf("loop should continue after decode error, got %v / %v", objs[1], errs[1])
	}
}

func TestQueue_ConnectionFailure(t *testing.T) {
	q, mr := newTestQueue(t, Config{})
	ctx := context.Background()

	if err := q.EnsureLive(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()

	if err := q.EnsureLive(ctx); !errors.Is(err, mq.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}

	count := 0
	for _, err := range q.Listen(ctx, "q1", testPoll) {
		count++
		if !errors.Is(err, mq.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one error, got %d items", count)
	}

	if _, err := q.Publish(ctx, "x", "q1"); !errors.Is(err, mq.ErrPublish) {
		t.Errorf("expected ErrPublish, got %v", err)
	}
}

func TestQueue_EmptyName(t *testing.T) {
	q, _ := newTestQueue(t, Config{})

	if _, err := q.Publish(context.Background(), "x", ""); !errors.Is(err, mq.ErrProvision) {
		t.Errorf("expected ErrProvision, got %v", err)
	}
	for _, err := range q.Listen(context.Background(), "", testPoll) {
		if !errors.Is(err, mq.ErrProvision) {
			t.Errorf("expected ErrProvision, got %v", err)
		}
	}
}

func TestCredentials_Addr(t *testing.T) {
	if got := (Credentials{Host: "redis"}).Addr(); got != "redis:6379" {
		t.Errorf("expected default port, got %q", got)
	}
	if got := (Credentials{Host: "redis", Port: 6380}).Addr(); got != "redis:6380" {
		t.Errorf("unexpected addr %q", got)
	}
}
