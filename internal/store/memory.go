package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-process Store used by tests and broker-less local runs.
// It implements the same semantics as the Mongo adapter, including the
// atomic set and counter mutations.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string]Document
	seq     map[string]int64
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document), seq: make(map[string]int64)}
}

func (m *Memory) Get(_ context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc)
}

func (m *Memory) Upsert(_ context.Context, id string, doc Document) error {
	copied, err := cloneDoc(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		m.nextSeq++
		m.seq[id] = m.nextSeq
	}
	m.docs[id] = copied
	return nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	delete(m.seq, id)
	return nil
}

func (m *Memory) Find(_ context.Context, q Query) ([]Document, error) {
	type hit struct {
		doc Document
		seq int64
	}
	m.mu.RLock()
	var hits []hit
	for id, doc := range m.docs {
		if matches(doc, id, q.Filter) {
			copied, err := cloneDoc(doc)
			if err != nil {
				m.mu.RUnlock()
				return nil, err
			}
			hits = append(hits, hit{doc: copied, seq: m.seq[id]})
		}
	}
	m.mu.RUnlock()

	// insertion order as the baseline keeps equal sort keys deterministic
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	if q.SortField != "" {
		field := q.SortField
		sort.SliceStable(hits, func(i, j int) bool {
			ti, tj := Time(hits[i].doc, field), Time(hits[j].doc, field)
			if q.SortDesc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
	}
	matched := make([]Document, 0, len(hits))
	for _, h := range hits {
		matched = append(matched, h.doc)
	}
	if len(matched) == 0 {
		matched = nil
	}
	if q.Offset > 0 {
		if q.Offset >= int64(len(matched)) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *Memory) FindOne(ctx context.Context, filter Filter) (Document, error) {
	docs, err := m.Find(ctx, Query{Filter: filter, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (m *Memory) AddToSet(_ context.Context, id, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return false, ErrNotFound
	}
	current := Strings(doc, field)
	for _, v := range current {
		if v == value {
			return false, nil
		}
	}
	doc[field] = append(current, value)
	return true, nil
}

func (m *Memory) PullValue(_ context.Context, id, field, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return false, ErrNotFound
	}
	current := Strings(doc, field)
	next := current[:0]
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if removed {
		doc[field] = next
	}
	return removed, nil
}

func (m *Memory) IncField(_ context.Context, id, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc[field] = Int64(doc, field) + delta
	return nil
}

func (m *Memory) SetFields(_ context.Context, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func matches(doc Document, id string, f Filter) bool {
	for k, want := range f {
		var have interface{}
		if k == "_id" {
			have = id
		} else {
			have = doc[k]
		}
		switch w := want.(type) {
		case []string:
			s, ok := have.(string)
			if !ok {
				return false
			}
			found := false
			for _, candidate := range w {
				if candidate == s {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if have != want {
				return false
			}
		}
	}
	return true
}

// cloneDoc deep-copies through a bson round trip so callers can never
// mutate stored state through a returned document.
func cloneDoc(doc Document) (Document, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	var out Document
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	return out, nil
}
