package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSetAndQuantity(t *testing.T) {
	c := NewCart()
	assert.Equal(t, 0, c.Quantity("Apple"))

	c.set("Apple", 2)
	assert.Equal(t, 2, c.Quantity("Apple"))
	assert.Equal(t, 1, c.Len())
}

func TestCartZeroQuantityRemovesEntry(t *testing.T) {
	c := NewCart()
	c.set("Apple", 1)
	c.set("Apple", 0)

	assert.Equal(t, 0, c.Len(), "zero and absent are the same state")
	assert.Empty(t, c.Names())

	c.set("Bread", -3)
	assert.Equal(t, 0, c.Len())
}

func TestCartCountSumsQuantities(t *testing.T) {
	c := NewCart()
	c.set("Apple", 2)
	c.set("Bread", 3)

	assert.Equal(t, 5, c.Count())
	assert.Equal(t, 2, c.Len())
}

func TestCartJSONRoundTripKeepsOrder(t *testing.T) {
	c := NewCart()
	c.set("Яблоки", 2)
	c.set("Хлеб", 1)
	c.set("Молоко", 4)

	payload, err := json.Marshal(c)
	require.NoError(t, err)

	got, err := decodeCart(payload)
	require.NoError(t, err)

	assert.Equal(t, []string{"Яблоки", "Хлеб", "Молоко"}, got.Names())
	assert.Equal(t, 2, got.Quantity("Яблоки"))
	assert.Equal(t, 4, got.Quantity("Молоко"))
}

func TestDecodeCartStructuralFailure(t *testing.T) {
	_, err := decodeCart([]byte(`{"Apple": 2`))
	assert.Error(t, err)

	_, err = decodeCart([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestDecodeCartDropsInvalidQuantities(t *testing.T) {
	c, err := decodeCart([]byte(`{"Apple": 2, "Bread": 0, "Milk": -1, "Cheese": 1.5, "Eggs": "many"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Apple"}, c.Names())
	assert.Equal(t, 2, c.Quantity("Apple"))
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewCart()
	c.set("Apple", 2)

	cp := c.clone()
	cp.set("Apple", 9)
	cp.set("Bread", 1)

	assert.Equal(t, 2, c.Quantity("Apple"))
	assert.Equal(t, 1, c.Len())
}
