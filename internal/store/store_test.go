package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStringsToleratesDecodedShapes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings(Document{"f": []string{"a", "b"}}, "f"))
	assert.Equal(t, []string{"a", "b"}, Strings(Document{"f": primitive.A{"a", "b"}}, "f"))
	assert.Equal(t, []string{"a", "b"}, Strings(Document{"f": []interface{}{"a", "b"}}, "f"))
	assert.Nil(t, Strings(Document{}, "f"))
	assert.Nil(t, Strings(nil, "f"))
}

func TestInt64ToleratesDecodedShapes(t *testing.T) {
	assert.Equal(t, int64(3), Int64(Document{"n": int64(3)}, "n"))
	assert.Equal(t, int64(3), Int64(Document{"n": int32(3)}, "n"))
	assert.Equal(t, int64(3), Int64(Document{"n": 3}, "n"))
	assert.Equal(t, int64(3), Int64(Document{"n": float64(3)}, "n"))
	assert.Equal(t, int64(0), Int64(Document{}, "n"))
}

func TestTimeNormalizesToUTC(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)

	got := Time(Document{"t": primitive.NewDateTimeFromTime(want)}, "t")
	assert.Equal(t, want, got)
	assert.Equal(t, time.UTC, got.Location())

	inLocal := Time(Document{"t": want.In(time.FixedZone("X", 3600))}, "t")
	assert.Equal(t, want, inLocal)
	assert.Equal(t, time.UTC, inLocal.Location())

	assert.True(t, Time(Document{}, "t").IsZero())
}
