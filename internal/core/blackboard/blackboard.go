package blackboard

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

func init() {
	// dynamic values commonly stored in a blackboard
	gob.Register(time.Time{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// Blackboard is a thread-safe key/value store that can serve as the context
// of a behavior tree. Namespace views share storage with their root.
type Blackboard struct {
	root   *store
	prefix string
}

type store struct {
	mu      sync.RWMutex
	data    map[string]any
	version uint64
}

// New creates an empty root blackboard.
func New() *Blackboard {
	return &Blackboard{root: &store{data: make(map[string]any)}}
}

func (b *Blackboard) fullKey(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + ":" + key
}

// Get retrieves a value by key.
func (b *Blackboard) Get(key string) (any, bool) {
	full := b.fullKey(key)
	b.root.mu.RLock()
	defer b.root.mu.RUnlock()
	v, ok := b.root.data[full]
	return v, ok
}

// Set stores value under key.
func (b *Blackboard) Set(key string, value any) {
	full := b.fullKey(key)
	b.root.mu.Lock()
	b.root.data[full] = value
	b.root.version++
	b.root.mu.Unlock()
}

// Delete removes key.
func (b *Blackboard) Delete(key string) {
	full := b.fullKey(key)
	b.root.mu.Lock()
	if _, ok := b.root.data[full]; ok {
		delete(b.root.data, full)
		b.root.version++
	}
	b.root.mu.Unlock()
}

// Has reports whether key is present.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Update applies fn to the current value of key under the write lock and
// stores the result.
func (b *Blackboard) Update(key string, fn func(v any, ok bool) any) any {
	full := b.fullKey(key)
	b.root.mu.Lock()
	defer b.root.mu.Unlock()
	v, ok := b.root.data[full]
	nv := fn(v, ok)
	b.root.data[full] = nv
	b.root.version++
	return nv
}

// Incr adds delta to the number stored under key, treating a missing key
// as zero, and stores the result as an int. A non-numeric value is left in
// place and Incr returns false.
func (b *Blackboard) Incr(key string, delta int) (int, bool) {
	full := b.fullKey(key)
	b.root.mu.Lock()
	defer b.root.mu.Unlock()
	n := 0
	if v, ok := b.root.data[full]; ok {
		if n, ok = toInt(v); !ok {
			return 0, false
		}
	}
	n += delta
	b.root.data[full] = n
	b.root.version++
	return n, true
}

func (b *Blackboard) GetString(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt accepts any integer or float representation; JSON and gob round
// trips do not preserve the exact numeric type.
func (b *Blackboard) GetInt(key string) (int, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func (b *Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch vv := v.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	default:
		return 0, false
	}
}

func (b *Blackboard) GetBool(key string) (bool, bool) {
	v, ok := b.Get(key)
	if !ok {
		return false, false
	}
	bv, ok := v.(bool)
	return bv, ok
}

// Namespace returns a view whose keys are stored as "ns:key". Nested
// namespaces join with ":"; colons inside ns are replaced by '_'.
func (b *Blackboard) Namespace(ns string) *Blackboard {
	ns = strings.ReplaceAll(ns, ":", "_")
	return &Blackboard{root: b.root, prefix: b.fullKey(ns)}
}

// Keys returns the sorted keys visible in this view.
func (b *Blackboard) Keys() []string {
	b.root.mu.RLock()
	keys := make([]string, 0, len(b.root.data))
	for k := range b.root.data {
		keys = append(keys, k)
	}
	b.root.mu.RUnlock()
	sort.Strings(keys)
	if b.prefix == "" {
		return keys
	}
	pref := b.prefix + ":"
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, pref) {
			res = append(res, strings.TrimPrefix(k, pref))
		}
	}
	return res
}

// Len returns the number of keys visible in this view.
func (b *Blackboard) Len() int {
	return len(b.Keys())
}

// Clear removes every key visible in this view.
func (b *Blackboard) Clear() {
	b.root.mu.Lock()
	defer b.root.mu.Unlock()
	if b.prefix == "" {
		b.root.data = make(map[string]any)
		b.root.version++
		return
	}
	pref := b.prefix + ":"
	for k := range b.root.data {
		if strings.HasPrefix(k, pref) {
			delete(b.root.data, k)
		}
	}
	b.root.version++
}

// Version increments on every mutation of the shared storage.
func (b *Blackboard) Version() uint64 {
	b.root.mu.RLock()
	defer b.root.mu.RUnlock()
	return b.root.version
}

// Snapshot returns a shallow copy of the visible entries.
func (b *Blackboard) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, k := range b.Keys() {
		if v, ok := b.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// MarshalBinary encodes the whole shared storage with gob. Custom value
// types must be registered with gob.Register.
func (b *Blackboard) MarshalBinary() ([]byte, error) {
	b.root.mu.RLock()
	defer b.root.mu.RUnlock()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b.root.data); err != nil {
		return nil, fmt.Errorf("encode blackboard: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the shared storage with a MarshalBinary snapshot.
func (b *Blackboard) UnmarshalBinary(data []byte) error {
	decoded := make(map[string]any)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("decode blackboard: %w", err)
	}
	b.root.mu.Lock()
	b.root.data = decoded
	b.root.version++
	b.root.mu.Unlock()
	return nil
}

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int8:
		return int(vv), true
	case int16:
		return int(vv), true
	case int32:
		return int(vv), true
	case int64:
		return int(vv), true
	case uint:
		return int(vv), true
	case uint8:
		return int(vv), true
	case uint16:
		return int(vv), true
	case uint32:
		return int(vv), true
	case uint64:
		return int(vv), true
	case float32:
		return int(vv), true
	case float64:
		return int(vv), true
	default:
		return 0, false
	}
}
