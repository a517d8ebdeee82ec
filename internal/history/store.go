package history

import (
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries is the number of samples kept per device.
	DefaultMaxEntries = 15
	// DefaultWindow is how far back samples are kept.
	DefaultWindow = 24 * time.Hour
	// DefaultKeyPrefix prefixes the device identifier in storage keys.
	DefaultKeyPrefix = "metrics_history_"
)

// KeyValue is the persistent keyed storage a Store writes through to.
// Get reports ok=false with a nil error when the key is absent.
type KeyValue interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// KeyLister is implemented by storage that can enumerate its keys.
type KeyLister interface {
	Keys(prefix string) ([]string, error)
}

// ExpiringKeyValue is implemented by storage that can expire keys. A Store
// writes through it with its window as the lifetime, so history outlives
// a restart gap no longer than the window.
type ExpiringKeyValue interface {
	SetWithTTL(key, value string, ttl time.Duration) error
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	MaxEntries int
	Window     time.Duration
	KeyPrefix  string
	Now        func() time.Time
	Logger     *slog.Logger

	// OnPersistError is called after a failed write. The in-memory
	// sequence has already been updated when it runs.
	OnPersistError func(deviceID string, err error)
}

// Store holds a capped, time-windowed sample sequence per device and writes
// each change through to a KeyValue. The in-memory copy is authoritative for
// the life of the Store; storage only seeds it on first access.
type Store struct {
	mu     sync.Mutex
	kv     KeyValue
	opts   Options
	logger *slog.Logger
	series map[string]*RingBuffer[Sample]
}

// NewStore creates a Store backed by kv. A nil kv keeps history in memory only.
func NewStore(kv KeyValue, opts Options) *Store {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		kv:     kv,
		opts:   opts,
		logger: logger,
		series: make(map[string]*RingBuffer[Sample]),
	}
}

// MaxEntries returns the per-device cap.
func (s *Store) MaxEntries() int { return s.opts.MaxEntries }

// Window returns the retention horizon.
func (s *Store) Window() time.Duration { return s.opts.Window }

// Key returns the storage key for a device.
func (s *Store) Key(deviceID string) string {
	return s.opts.KeyPrefix + deviceID
}

// Load returns the device's sequence. Missing, unreadable, or undecodable
// persisted data yields an empty sequence; Load never fails.
func (s *Store) Load(deviceID string) Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sequence(s.bufferLocked(deviceID).All())
}

// Append adds a sample to the device's sequence, evicts entries older than
// the window and beyond the cap, persists the result, and returns it.
// A failed write is logged and otherwise ignored.
func (s *Store) Append(deviceID string, sample Sample) Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.bufferLocked(deviceID)
	if last, ok := buf.Last(); ok && sample.Timestamp < last.Timestamp {
		buf.Reset(insertSorted(buf.All(), sample))
	} else {
		buf.Add(sample)
	}

	cutoff := s.cutoff()
	buf.DropWhile(func(x Sample) bool { return x.Timestamp < cutoff })

	seq := Sequence(buf.All())
	s.persistLocked(deviceID, seq)
	return seq
}

// Devices returns the identifiers of every device with history, sorted:
// those loaded in this session plus, when the storage can list its keys,
// those persisted under the key prefix.
func (s *Store) Devices() ([]string, error) {
	s.mu.Lock()
	seen := make(map[string]bool, len(s.series))
	for id := range s.series {
		seen[id] = true
	}
	s.mu.Unlock()

	var err error
	if lister, ok := s.kv.(KeyLister); ok {
		var keys []string
		if keys, err = lister.Keys(s.opts.KeyPrefix); err == nil {
			for _, k := range keys {
				if id := strings.TrimPrefix(k, s.opts.KeyPrefix); id != "" {
					seen[id] = true
				}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, err
}

func (s *Store) cutoff() int64 {
	return s.opts.Now().Add(-s.opts.Window).UnixMilli()
}

// bufferLocked returns the device's buffer, seeding it from storage on first
// use. Caller holds s.mu.
func (s *Store) bufferLocked(deviceID string) *RingBuffer[Sample] {
	if buf, ok := s.series[deviceID]; ok {
		return buf
	}
	buf := NewRingBuffer[Sample](s.opts.MaxEntries)
	buf.Reset(s.sanitize(s.read(deviceID)))
	s.series[deviceID] = buf
	return buf
}

// read fetches and decodes the persisted sequence, returning nil on any failure.
func (s *Store) read(deviceID string) Sequence {
	if s.kv == nil {
		return nil
	}
	key := s.Key(deviceID)
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("history read failed", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var seq Sequence
	if err := json.Unmarshal([]byte(raw), &seq); err != nil {
		s.logger.Warn("history decode failed, starting empty", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return seq
}

// sanitize orders persisted samples and drops anything outside the window.
// Trimming to the cap happens when the buffer is reset.
func (s *Store) sanitize(seq Sequence) Sequence {
	if len(seq) == 0 {
		return seq
	}
	sort.SliceStable(seq, func(i, j int) bool { return seq[i].Timestamp < seq[j].Timestamp })
	cutoff := s.cutoff()
	i := sort.Search(len(seq), func(i int) bool { return seq[i].Timestamp >= cutoff })
	return seq[i:]
}

func (s *Store) persistLocked(deviceID string, seq Sequence) {
	if s.kv == nil {
		return
	}
	key := s.Key(deviceID)
	data, err := json.Marshal(seq)
	if err == nil {
		if ekv, ok := s.kv.(ExpiringKeyValue); ok {
			err = ekv.SetWithTTL(key, string(data), s.opts.Window)
		} else {
			err = s.kv.Set(key, string(data))
		}
	}
	if err != nil {
		s.logger.Warn("history write failed, keeping in-memory copy",
			slog.String("key", key), slog.Any("error", err))
		if s.opts.OnPersistError != nil {
			s.opts.OnPersistError(deviceID, err)
		}
	}
}

func insertSorted(items []Sample, sample Sample) []Sample {
	i := sort.Search(len(items), func(i int) bool { return items[i].Timestamp > sample.Timestamp })
	items = append(items, Sample{})
	copy(items[i+1:], items[i:])
	items[i] = sample
	return items
}
