package basket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryUnmarshalSimpleQuantity(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte("2"), &e))

	assert.False(t, e.IsBySize())
	assert.Equal(t, 2, e.Quantity)
	assert.Equal(t, 2, e.TotalQuantity())
}

func TestEntryUnmarshalBySize(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"items_by_size":{"M":1,"L":2}}`), &e))

	assert.True(t, e.IsBySize())
	assert.Equal(t, map[string]int{"M": 1, "L": 2}, e.BySize)
	assert.Equal(t, 3, e.TotalQuantity())
	assert.Equal(t, []string{"L", "M"}, e.Sizes())
}

func TestEntryUnmarshalRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"zero quantity":         "0",
		"negative quantity":     "-1",
		"zero size quantity":    `{"items_by_size":{"M":0}}`,
		"missing items_by_size": `{"sizes":{"M":1}}`,
		"wrong type":            `"two"`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var e Entry
			assert.Error(t, json.Unmarshal([]byte(raw), &e))
		})
	}
}

func TestBasketSnapshotRoundTrip(t *testing.T) {
	raw := `{"7":2,"9":{"items_by_size":{"L":2,"M":1}}}`

	b, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, b, 2)

	assert.Equal(t, 2, b["7"].Quantity)
	assert.Equal(t, map[string]int{"M": 1, "L": 2}, b["9"].BySize)

	// The serialized form must match the legacy snapshot byte for byte
	// (it is stored verbatim on orders for audit).
	out, err := b.Serialize()
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestParseEmptySnapshot(t *testing.T) {
	b, err := Parse("")
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}

func TestSortedIDsNumericOrder(t *testing.T) {
	b := Basket{
		"10": {Quantity: 1},
		"2":  {Quantity: 1},
		"7":  {Quantity: 1},
	}
	assert.Equal(t, []string{"2", "7", "10"}, b.SortedIDs())
}

func TestSerializeNilBasket(t *testing.T) {
	var b Basket
	out, err := b.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}
