// Package store wraps the document database behind a uniform adapter.
// Every record lives in one logical collection and carries a "type" field
// naming the entity kind; filters are structured equality (or membership,
// when the filter value is a string slice) rather than query strings.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is the normal absence outcome of a point lookup.
	ErrNotFound = errors.New("document not found")
	// ErrTransient marks a store failure that was retried and still failed.
	ErrTransient = errors.New("store temporarily unavailable")
	// ErrConflict marks a uniqueness violation detected by the store.
	ErrConflict = errors.New("document conflict")
)

// Document is the schemaless record shape exchanged with the store.
type Document = bson.M

// Filter selects documents by field value. A string value matches equality;
// a []string value matches membership ("field in values").
type Filter map[string]interface{}

// Query describes a filtered scan.
type Query struct {
	Filter    Filter
	SortField string
	SortDesc  bool
	Limit     int64
	Offset    int64
}

// Store is the adapter contract. Get/Upsert/Remove act on whole documents;
// AddToSet, PullValue and IncField are document-level atomic field
// mutations and are the required path for embedded set and counter updates.
type Store interface {
	Get(ctx context.Context, id string) (Document, error)
	Upsert(ctx context.Context, id string, doc Document) error
	Remove(ctx context.Context, id string) error
	Find(ctx context.Context, q Query) ([]Document, error)
	FindOne(ctx context.Context, filter Filter) (Document, error)

	// AddToSet appends value to the array field unless already present,
	// treating an absent field as an empty set. It reports whether the
	// document actually changed.
	AddToSet(ctx context.Context, id, field, value string) (bool, error)
	// PullValue removes value from the array field and reports whether the
	// document actually changed. Removing an absent value is a no-op.
	PullValue(ctx context.Context, id, field, value string) (bool, error)
	// IncField adds delta to a numeric field, creating it at delta if absent.
	IncField(ctx context.Context, id, field string, delta int64) error
	SetFields(ctx context.Context, id string, fields Document) error
}

// Strings reads an array-valued field out of a raw document, tolerating
// the different slice shapes bson decoding produces. Absent fields yield
// an empty slice, never an error.
func Strings(doc Document, field string) []string {
	if doc == nil {
		return nil
	}
	switch v := doc[field].(type) {
	case []string:
		return v
	case primitive.A:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Int64 reads a numeric field, defaulting to 0 on absence.
func Int64(doc Document, field string) int64 {
	switch v := doc[field].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Time reads a timestamp field, defaulting to the zero time on absence.
// Always UTC: bson decoding yields primitive.DateTime in the local
// location, and the repositories store UTC.
func Time(doc Document, field string) time.Time {
	switch v := doc[field].(type) {
	case time.Time:
		return v.UTC()
	case primitive.DateTime:
		return v.Time().UTC()
	default:
		return time.Time{}
	}
}
