package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanPublisher struct {
	topics chan string
	logs   chan []AggregatedLogEntry
}

func newChanPublisher() *chanPublisher {
	return &chanPublisher{topics: make(chan string, 4), logs: make(chan []AggregatedLogEntry, 4)}
}

func (p *chanPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.topics <- topic
	p.logs <- payload.([]AggregatedLogEntry)
	return nil
}

func TestCollectorAggregatesDuplicateErrors(t *testing.T) {
	pub := newChanPublisher()
	l := Nop()
	l.AddCollector(&CollectionConfig{
		FlushInterval: time.Hour,
		MaxEntries:    2,
		Topic:         "openfof.logs",
		Publisher:     pub,
	})
	defer l.RemoveCollector()

	// duplicates only merge when logged from the same line
	for range 2 {
		l.Error("load failed", String("symbol", "TLT"))
	}
	l.Warn("slow query", Duration("elapsed", time.Second))
	// second distinct entry fills the batch and triggers the flush
	l.Error("projection failed", Float64("sigma", 0.2))

	select {
	case topic := <-pub.topics:
		assert.Equal(t, "openfof.logs", topic)
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not flush")
	}
	logs := <-pub.logs
	require.Len(t, logs, 2)

	assert.Equal(t, "load failed", logs[0].Message)
	assert.Equal(t, 2, logs[0].Count)
	assert.Equal(t, "projection failed", logs[1].Message)
	assert.Equal(t, 1, logs[1].Count)
	for _, e := range logs {
		assert.Equal(t, "error", e.Level)
		assert.Contains(t, e.Caller, "logger/collector_test.go:")
	}
}

func TestCollectorMinLevelWarn(t *testing.T) {
	pub := newChanPublisher()
	l := Nop()
	l.AddCollector(&CollectionConfig{FlushInterval: time.Hour, MaxEntries: 1, Publisher: pub, MinLevel: "warn"})
	defer l.RemoveCollector()

	l.Info("ignored")
	l.Warn("slow query", Duration("elapsed", 1500*time.Millisecond))

	select {
	case logs := <-pub.logs:
		require.Len(t, logs, 1)
		assert.Equal(t, "warn", logs[0].Level)
		assert.Equal(t, int64(1500), logs[0].Fields["elapsed"])
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not flush")
	}
}

func TestCollectorFlushesOnClose(t *testing.T) {
	pub := newChanPublisher()
	l := Nop()
	l.AddCollector(&CollectionConfig{FlushInterval: time.Hour, MaxEntries: 100, Publisher: pub})

	l.Error("write failed", Error(errors.New("disk full")))
	l.RemoveCollector()

	logs := <-pub.logs
	require.Len(t, logs, 1)
	assert.Equal(t, "disk full", logs[0].Fields["error"])
}

type failingPublisher struct{}

func (failingPublisher) PublishMessage(context.Context, string, interface{}) error {
	return errors.New("broker down")
}

func TestCollectorReportsDroppedBatch(t *testing.T) {
	var buf bytes.Buffer
	c := NewLogCollector(&CollectionConfig{FlushInterval: time.Hour, Publisher: failingPublisher{}, Fallback: &buf})
	c.AddLog("error", "boom", nil, "x.go:1")
	c.Close()
	assert.Contains(t, buf.String(), "dropped 1 entries: broker down")
}

func TestWithKeepsCollector(t *testing.T) {
	l := Nop()
	l.AddCollector(&CollectionConfig{FlushInterval: time.Hour, MaxEntries: 10, Publisher: newChanPublisher()})
	defer l.RemoveCollector()

	child := l.With(String("component", "analytics"))
	assert.Same(t, l.collector, child.collector)
}
