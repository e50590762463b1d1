// signalmux - Telemetry Router
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signalmux

// Package queue implements the durable, bounded, spill-to-disk channel
// described in spec.md §4.1: a named FIFO carrying event.Event from one or
// more producer handles (cloned Senders, used for fan-in) to exactly one
// Receiver.
//
// Tier 1 is a fixed-capacity in-memory ring (a buffered Go channel). When it
// is full, new sends spill to Tier 2, an on-disk overflow backed by
// BadgerDB (one database per queue directory), keyed by a monotonically
// increasing sequence number so Badger's own key ordering gives strict
// FIFO replay — the same property spec.md §4.1 asks of hand-rolled segment
// files, produced instead by the teacher's BadgerDB spill tier
// (grounded on cartographus's internal/wal BadgerWAL).
//
// Once a send has spilled to disk, every subsequent send on that queue
// keeps spilling until a background drainer goroutine has moved the full
// backlog back into the ring; this is what keeps FIFO order intact across
// the two tiers instead of letting a late, directly-ring-written event
// overtake an earlier disk-spilled one.
package queue

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/signalmux/internal/event"
)

var (
	// ErrQueueClosed is returned by Send/Next once a queue has been closed
	// or has poisoned after exhausting its disk-I/O retry budget.
	ErrQueueClosed = errors.New("queue: closed")
	// ErrAlreadyOpen is returned by Open when a queue with the same name
	// is already open in this process (spec.md §9 open question: this
	// spec requires startup rejection of duplicate config_path).
	ErrAlreadyOpen = errors.New("queue: already open")
)

const (
	defaultMemCapacity  = 4096
	maxSpillAttempts    = 6
	initialSpillBackoff = 20 * time.Millisecond
	maxSpillBackoff     = 2 * time.Second
)

// Options configures a queue beyond its name and data directory.
type Options struct {
	// MemCapacity is the number of events the in-memory ring holds before
	// spilling. Defaults to 4096.
	MemCapacity int
	// MaxDiskBytes bounds the on-disk spill tier; 0 means unbounded. Once
	// both tiers are full, Send blocks (spec.md §4.1 back-pressure).
	MaxDiskBytes int64
}

// Queue is the shared state between a queue's Sender clones and its single
// Receiver.
type Queue struct {
	name string
	dir  string
	log  zerolog.Logger

	ring chan event.Event
	db   *badger.DB

	mu           sync.Mutex
	cond         *sync.Cond
	nextWriteSeq uint64
	nextReadSeq  uint64
	backlog      int64
	diskBytes    int64
	maxDiskBytes int64
	closed       bool
	poisoned     error
	closeCh      chan struct{}
}

// Sender is a cheaply cloneable handle for writing into a Queue. Sends
// through any clone are serialized into one FIFO stream (spec.md §4.1).
type Sender struct {
	q *Queue
}

// Receiver is the single, uniquely owned read handle for a Queue.
type Receiver struct {
	q *Queue
}

// wireTelemetry/wireLog exist so Tags (an unexported-field struct) survive a
// JSON round trip; event.Telemetry/event.Log embed Tags directly, so we
// marshal through a plain-map shadow type.
type wireTelemetry struct {
	Name       string            `json:"name"`
	Value      float64           `json:"value"`
	Kind       event.Kind        `json:"kind"`
	SampleRate float64           `json:"sample_rate"`
	Timestamp  int64             `json:"timestamp"`
	Tags       map[string]string `json:"tags"`
}

type wireLog struct {
	Path      string            `json:"path"`
	Payload   string            `json:"payload"`
	Timestamp int64             `json:"timestamp"`
	Tags      map[string]string `json:"tags"`
}

type wireEnvelope struct {
	Variant   event.Variant  `json:"variant"`
	Telemetry *wireTelemetry `json:"telemetry,omitempty"`
	Log       *wireLog       `json:"log,omitempty"`
	Epoch     uint64         `json:"epoch,omitempty"`
}

func toWire(e event.Event) wireEnvelope {
	switch e.Variant {
	case event.VariantTelemetry:
		t := e.Telemetry
		return wireEnvelope{Variant: e.Variant, Telemetry: &wireTelemetry{
			Name: t.Name, Value: t.Value, Kind: t.Kind, SampleRate: t.SampleRate,
			Timestamp: t.Timestamp, Tags: t.Tags.Map(),
		}}
	case event.VariantLog:
		l := e.Log
		return wireEnvelope{Variant: e.Variant, Log: &wireLog{
			Path: l.Path, Payload: l.Payload, Timestamp: l.Timestamp, Tags: l.Tags.Map(),
		}}
	default:
		return wireEnvelope{Variant: event.VariantTimerFlush, Epoch: e.Epoch}
	}
}

func (w wireEnvelope) toEvent() event.Event {
	switch w.Variant {
	case event.VariantTelemetry:
		tags := event.NewTags(w.Telemetry.Tags)
		return event.NewTelemetryEvent(event.Telemetry{
			Name: w.Telemetry.Name, Value: w.Telemetry.Value, Kind: w.Telemetry.Kind,
			SampleRate: w.Telemetry.SampleRate, Timestamp: w.Telemetry.Timestamp, Tags: tags,
		})
	case event.VariantLog:
		tags := event.NewTags(w.Log.Tags)
		return event.NewLogEvent(event.Log{
			Path: w.Log.Path, Payload: w.Log.Payload, Timestamp: w.Log.Timestamp, Tags: tags,
		})
	default:
		return event.NewFlushEvent(w.Epoch)
	}
}

func encodeKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func decodeKey(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// Open creates or reopens a named durable queue rooted at
// dataDir/<name>/. It fails if dataDir is not writable or if a queue with
// the same name is already open in this process (spec.md §9 open
// question: this spec mandates rejection rather than undefined behavior).
func Open(name, dataDir string, opts Options) (*Sender, *Receiver, error) {
	if err := registerOpen(name); err != nil {
		return nil, nil, err
	}

	if opts.MemCapacity <= 0 {
		opts.MemCapacity = defaultMemCapacity
	}

	dir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		unregisterOpen(name)
		return nil, nil, fmt.Errorf("queue %s: create data dir: %w", name, err)
	}
	if err := checkWritable(dir); err != nil {
		unregisterOpen(name)
		return nil, nil, fmt.Errorf("queue %s: %w", name, err)
	}

	badgerOpts := badger.DefaultOptions(filepath.Join(dir, "spill"))
	badgerOpts.Logger = nil
	db, err := badger.Open(badgerOpts)
	if err != nil {
		unregisterOpen(name)
		return nil, nil, fmt.Errorf("queue %s: open spill db: %w", name, err)
	}

	q := &Queue{
		name:         name,
		dir:          dir,
		log:          zerolog.New(os.Stderr).With().Str("queue", name).Timestamp().Logger(),
		ring:         make(chan event.Event, opts.MemCapacity),
		db:           db,
		maxDiskBytes: opts.MaxDiskBytes,
		closeCh:      make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	if err := q.replayExisting(); err != nil {
		db.Close()
		unregisterOpen(name)
		return nil, nil, fmt.Errorf("queue %s: replay: %w", name, err)
	}

	go q.drain()

	return &Sender{q: q}, &Receiver{q: q}, nil
}

func checkWritable(dir string) error {
	probe := filepath.Join(dir, ".write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	f.Close()
	return os.Remove(probe)
}

// replayExisting scans any segments left over from a previous process and
// sets the read/write cursors so new sends continue the same sequence
// (spec.md §8 "Durability").
func (q *Queue) replayExisting() error {
	var minSeq, maxSeq uint64
	haveAny := false
	var totalBytes int64

	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			seq := decodeKey(item.Key())
			if !haveAny {
				minSeq = seq
				haveAny = true
			}
			if seq+1 > maxSeq {
				maxSeq = seq + 1
			}
			if seq < minSeq {
				minSeq = seq
			}
			totalBytes += item.ValueSize()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if haveAny {
		q.nextReadSeq = minSeq
		q.nextWriteSeq = maxSeq
		q.backlog = int64(maxSeq - minSeq)
		q.diskBytes = totalBytes
	}
	return nil
}

// Clone produces an additional Sender handle sharing this queue.
func (s *Sender) Clone() *Sender {
	return &Sender{q: s.q}
}

// Send enqueues an event, blocking the caller when the in-memory tier is
// full and the disk tier has reached its configured byte cap. It returns
// only when space is available or the queue has been closed/poisoned.
func (s *Sender) Send(e event.Event) error {
	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return ErrQueueClosed
		}

		if q.backlog == 0 {
			select {
			case q.ring <- e:
				return nil
			default:
			}
		}

		if q.maxDiskBytes <= 0 || q.diskBytes < q.maxDiskBytes {
			if err := q.spillLocked(e); err != nil {
				q.poisonLocked(err)
				return ErrQueueClosed
			}
			return nil
		}

		// Both tiers are full: wait for the drainer to free disk space or
		// for the queue to close.
		q.cond.Wait()
	}
}

// spillLocked must be called with q.mu held. It persists e to the disk
// tier with bounded exponential backoff, per spec.md §4.1's failure
// semantics.
func (q *Queue) spillLocked(e event.Event) error {
	seq := q.nextWriteSeq
	data, err := json.Marshal(toWire(e))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := encodeKey(seq)

	backoff := initialSpillBackoff
	var lastErr error
	for attempt := 0; attempt < maxSpillAttempts; attempt++ {
		lastErr = q.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, data)
		})
		if lastErr == nil {
			q.nextWriteSeq++
			q.backlog++
			q.diskBytes += int64(len(data))
			// Wake the drainer, which waits on cond while backlog is 0.
			q.cond.Broadcast()
			return nil
		}
		q.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("spill write failed, retrying")
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxSpillBackoff {
			backoff = maxSpillBackoff
		}
	}
	return fmt.Errorf("spill exhausted retries: %w", lastErr)
}

// poisonLocked must be called with q.mu held. It transitions the queue to
// its permanently failed state: further sends return ErrQueueClosed and
// the receiver observes end-of-stream. The supervisor is expected to treat
// this as fatal (spec.md §7.2).
func (q *Queue) poisonLocked(err error) {
	if q.closed {
		return
	}
	q.poisoned = err
	q.closed = true
	close(q.closeCh)
	q.cond.Broadcast()
	q.log.Error().Err(err).Msg("queue poisoned")
}

// Poisoned reports the error that poisoned the queue, if any.
func (q *Queue) Poisoned() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.poisoned
}

// Depth reports the number of events currently spilled to disk,
// exposed so the internal telemetry source (spec.md §6 "internal"
// section) can report queue depth as one of the router's own metrics.
func (s *Sender) Depth() int64 {
	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.backlog
}

// Name returns the queue's config_path, for labeling internal metrics.
func (s *Sender) Name() string { return s.q.name }

// Close marks the queue closed. Any backlog still on disk is abandoned;
// this is used for poison and process shutdown, not graceful per-node
// shutdown (spec.md §3 "There is no graceful shutdown of individual
// nodes").
func (s *Sender) Close() {
	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.closeCh)
	q.cond.Broadcast()
}

// Next blocks until an event is available or the queue is permanently
// closed, in which case it returns (Event{}, false).
func (r *Receiver) Next() (event.Event, bool) {
	e, ok := <-r.q.ring
	return e, ok
}

// drain moves events from the disk tier back into the in-memory ring as
// the receiver consumes it, preserving strict FIFO order across both
// tiers. It owns the badger DB and the ring's lifetime.
func (q *Queue) drain() {
	defer func() {
		unregisterOpen(q.name)
		q.db.Close()
	}()

	for {
		q.mu.Lock()
		for q.backlog == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			// Closed/poisoned: stop draining. Any remaining on-disk
			// backlog is abandoned (spec.md §7.2 treats this as a fatal,
			// fail-fast condition, not a graceful drain).
			q.mu.Unlock()
			close(q.ring)
			return
		}
		seq := q.nextReadSeq
		q.mu.Unlock()

		key := encodeKey(seq)
		var payload []byte
		err := q.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			return item.Value(func(v []byte) error {
				payload = append([]byte(nil), v...)
				return nil
			})
		})
		if err != nil {
			q.mu.Lock()
			q.poisonLocked(fmt.Errorf("read spill entry %d: %w", seq, err))
			q.mu.Unlock()
			close(q.ring)
			return
		}

		var env wireEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			q.mu.Lock()
			q.poisonLocked(fmt.Errorf("decode spill entry %d: %w", seq, err))
			q.mu.Unlock()
			close(q.ring)
			return
		}

		select {
		case q.ring <- env.toEvent():
		case <-q.closeCh:
			close(q.ring)
			return
		}

		if err := q.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) }); err != nil {
			q.log.Warn().Err(err).Uint64("seq", seq).Msg("failed to delete drained spill entry")
		}

		q.mu.Lock()
		q.backlog--
		q.diskBytes -= int64(len(payload))
		q.nextReadSeq++
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}
