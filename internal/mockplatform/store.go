package mockplatform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
)

var (
	// ErrNotFound is returned when no resource matches an id or key.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate is returned when a key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// ConflictError reports an update or delete against a stale version.
type ConflictError struct {
	Expected int64
	Current  int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Object has a different version than expected. Expected: %d - Actual: %d.", e.Expected, e.Current)
}

// InputError reports a request the platform would reject as invalid.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalidInput(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// meta reads and writes the bookkeeping fields of a stored resource.
type meta[T any] struct {
	key   func(*T) string
	stamp func(v *T, id string, version int64, created, modified time.Time)
}

type record[T any] struct {
	value    T
	id       string
	version  int64
	created  time.Time
	modified time.Time
	seq      int64
}

// collection is an in-memory table of one resource type.
type collection[T any] struct {
	mu    sync.RWMutex
	meta  meta[T]
	items map[string]*record[T]
	seq   int64
	now   func() time.Time
}

func newCollection[T any](m meta[T], now func() time.Time) *collection[T] {
	return &collection[T]{meta: m, items: make(map[string]*record[T]), now: now}
}

func (c *collection[T]) snapshot(r *record[T]) T {
	v := r.value
	c.meta.stamp(&v, r.id, r.version, r.created, r.modified)
	return v
}

// Create stores v under a fresh id at version 1.
func (c *collection[T]) Create(v T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key := c.meta.key(&v); key != "" {
		if _, ok := c.byKeyLocked(key); ok {
			return v, fmt.Errorf("%w: %q", ErrDuplicate, key)
		}
	}

	now := c.now()
	c.seq++
	r := &record[T]{value: v, id: uuid.NewString(), version: 1, created: now, modified: now, seq: c.seq}
	c.items[r.id] = r
	return c.snapshot(r), nil
}

// Get returns the resource with id.
func (c *collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return c.snapshot(r), nil
}

// GetByKey returns the resource with key.
func (c *collection[T]) GetByKey(key string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byKeyLocked(key)
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return c.snapshot(r), nil
}

func (c *collection[T]) byKeyLocked(key string) (*record[T], bool) {
	for _, r := range c.items {
		if c.meta.key(&r.value) == key {
			return r, true
		}
	}
	return nil, false
}

// Update applies fn to the resource with id if it is still at version.
func (c *collection[T]) Update(id string, version int64, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateLocked(c.items[id], version, fn)
}

// UpdateByKey is Update addressing the resource by key.
func (c *collection[T]) UpdateByKey(key string, version int64, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, _ := c.byKeyLocked(key)
	return c.updateLocked(r, version, fn)
}

func (c *collection[T]) updateLocked(r *record[T], version int64, fn func(*T) error) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNotFound
	}
	if r.version != version {
		return zero, &ConflictError{Expected: version, Current: r.version}
	}

	next := c.snapshot(r)
	if err := fn(&next); err != nil {
		return zero, err
	}
	r.value = next
	r.version++
	r.modified = c.now()
	return c.snapshot(r), nil
}

// Upsert creates the resource under key or replaces the stored one. A
// non-nil version must match the stored one.
func (c *collection[T]) Upsert(key string, version *int64, v T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.byKeyLocked(key)
	if !ok {
		if version != nil && *version != 0 {
			var zero T
			return zero, ErrNotFound
		}
		now := c.now()
		c.seq++
		r = &record[T]{value: v, id: uuid.NewString(), version: 1, created: now, modified: now, seq: c.seq}
		c.items[r.id] = r
		return c.snapshot(r), nil
	}
	if version != nil && *version != r.version {
		var zero T
		return zero, &ConflictError{Expected: *version, Current: r.version}
	}
	r.value = v
	r.version++
	r.modified = c.now()
	return c.snapshot(r), nil
}

// Delete removes the resource with id if it is still at version.
func (c *collection[T]) Delete(id string, version int64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteLocked(c.items[id], version)
}

// DeleteByKey is Delete addressing the resource by key.
func (c *collection[T]) DeleteByKey(key string, version int64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, _ := c.byKeyLocked(key)
	return c.deleteLocked(r, version)
}

func (c *collection[T]) deleteLocked(r *record[T], version int64) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNotFound
	}
	if r.version != version {
		return zero, &ConflictError{Expected: version, Current: r.version}
	}
	delete(c.items, r.id)
	return c.snapshot(r), nil
}

// All returns every resource in creation order.
func (c *collection[T]) All() []T {
	c.mu.RLock()
	records := make([]*record[T], 0, len(c.items))
	for _, r := range c.items {
		records = append(records, r)
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = c.snapshot(r)
	}
	return out
}

// Query filters, sorts and pages the collection.
func (c *collection[T]) Query(q ListParams) (model.PagedQueryResult[T], error) {
	var preds []predicate
	for _, w := range q.Where {
		p, err := compilePredicate(w)
		if err != nil {
			return model.PagedQueryResult[T]{}, invalidInput("Malformed parameter: where: %v", err)
		}
		preds = append(preds, p)
	}
	sorts, err := parseSorts(q.Sort)
	if err != nil {
		return model.PagedQueryResult[T]{}, err
	}

	type row struct {
		value T
		doc   any
	}
	var rows []row
	for _, v := range c.All() {
		doc, err := toDocument(v)
		if err != nil {
			return model.PagedQueryResult[T]{}, err
		}
		matched := true
		for _, p := range preds {
			if !p(doc) {
				matched = false
				break
			}
		}
		if matched {
			rows = append(rows, row{v, doc})
		}
	}

	if len(sorts) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, s := range sorts {
				c := compare(pathValue(rows[i].doc, s.path), pathValue(rows[j].doc, s.path))
				if c == 0 || c == incomparable {
					continue
				}
				return (c < 0) != s.desc
			}
			return false
		})
	}

	offset, limit := q.window()
	page := model.PagedQueryResult[T]{Offset: offset, Limit: limit, Results: []T{}}
	if q.WithTotal == nil || *q.WithTotal {
		page.Total = int64(len(rows))
	}
	for i := offset; i < int64(len(rows)) && i < offset+limit; i++ {
		page.Results = append(page.Results, rows[i].value)
	}
	page.Count = int64(len(page.Results))
	return page, nil
}

type sortSpec struct {
	path string
	desc bool
}

func parseSorts(specs []string) ([]sortSpec, error) {
	out := make([]sortSpec, 0, len(specs))
	for _, s := range specs {
		fields := strings.Fields(s)
		if len(fields) != 2 || (fields[1] != "asc" && fields[1] != "desc") {
			return nil, invalidInput("Malformed parameter: sort: %q", s)
		}
		out = append(out, sortSpec{path: fields[0], desc: fields[1] == "desc"})
	}
	return out, nil
}

// toDocument converts v into generic JSON values.
func toDocument(v any) (any, error) {
	raw, err := codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := codec.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// pathValue follows a dotted path through a document.
func pathValue(doc any, path string) any {
	for _, seg := range strings.Split(path, ".") {
		doc = lookup(doc, seg)
		if doc == nil {
			return nil
		}
	}
	return doc
}
