package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Publisher ships a batch of aggregated entries to a topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig configures a LogCollector.
type CollectionConfig struct {
	FlushInterval  time.Duration
	MaxEntries     int // distinct entries that force an early flush
	Topic          string
	Publisher      Publisher
	PublishTimeout time.Duration
	// MinLevel is the lowest level collected; empty means error.
	MinLevel string
	// Fallback receives publish failures; defaults to stderr.
	Fallback io.Writer
}

// AggregatedLogEntry counts identical entries between two flushes.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates log entries and publishes them in batches,
// most frequent first.
type LogCollector struct {
	cfg     CollectionConfig
	level   zerolog.Level
	mu      sync.Mutex
	entries map[uint64]*AggregatedLogEntry
	flushCh chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewLogCollector starts the flush loop.
func NewLogCollector(cfg *CollectionConfig) *LogCollector {
	c := &LogCollector{
		cfg:     *cfg,
		level:   zerolog.ErrorLevel,
		entries: make(map[uint64]*AggregatedLogEntry),
		flushCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if c.cfg.FlushInterval <= 0 {
		c.cfg.FlushInterval = 30 * time.Second
	}
	if c.cfg.MaxEntries <= 0 {
		c.cfg.MaxEntries = 100
	}
	if c.cfg.PublishTimeout <= 0 {
		c.cfg.PublishTimeout = 10 * time.Second
	}
	if c.cfg.Fallback == nil {
		c.cfg.Fallback = os.Stderr
	}
	if lvl, err := zerolog.ParseLevel(c.cfg.MinLevel); err == nil && c.cfg.MinLevel != "" {
		c.level = lvl
	}

	c.wg.Add(1)
	go c.loop()
	return c
}

// AddLog records one entry and requests a flush once MaxEntries distinct
// entries are pending.
func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	key := entryKey(level, message, fields, caller)
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	full := len(c.entries) >= c.cfg.MaxEntries
	c.mu.Unlock()

	if full {
		select {
		case c.flushCh <- struct{}{}:
		default:
		}
	}
}

func entryKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s\x00%s\x00%s\x00", level, caller, message)
	// map keys marshal sorted, so equal field sets hash equally
	if b, err := json.Marshal(fields); err == nil {
		_, _ = h.Write(b)
	}
	return h.Sum64()
}

func (c *LogCollector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.flushCh:
			c.flush()
		case <-c.done:
			c.flush()
			return
		}
	}
}

// drain swaps out the pending entries, ordered by count then first sighting.
func (c *LogCollector) drain() []AggregatedLogEntry {
	c.mu.Lock()
	pending := c.entries
	c.entries = make(map[uint64]*AggregatedLogEntry, len(pending))
	c.mu.Unlock()

	out := make([]AggregatedLogEntry, 0, len(pending))
	for _, e := range pending {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].FirstSeen.Before(out[j].FirstSeen)
	})
	return out
}

func (c *LogCollector) flush() {
	batch := c.drain()
	if len(batch) == 0 || c.cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PublishTimeout)
	defer cancel()
	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
		_, _ = fmt.Fprintf(c.cfg.Fallback, "log collector: dropped %d entries: %v\n", len(batch), err)
	}
}

// Close publishes what is pending and stops the flush loop.
func (c *LogCollector) Close() {
	close(c.done)
	c.wg.Wait()
}
