package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []Record {
	return []Record{
		{"name": "Яблоки", "price": "1 500 тг", "category": "Фрукты", "image": "apple.jpg", "badges": "eco|new"},
		{"name": "Хлеб", "price": "300", "category": "Выпечка", "image": "", "badges": ""},
		{"name": "Молоко", "price": "бесплатно", "category": "Молочное", "image": "", "badges": "bio|hit|sale|vip"},
		{"name": "Сыр", "price": "2500.50", "category": "Молочное", "image": "", "badges": ""},
	}
}

func TestNewDerivesPrices(t *testing.T) {
	c := New(testRecords())
	require.Equal(t, 4, c.Len())

	products := c.Products()
	assert.Equal(t, 1500.0, products[0].Price, "non-digit runes stripped before parsing")
	assert.Equal(t, "1 500 тг", products[0].RawPrice, "raw field kept verbatim")
	assert.Equal(t, 300.0, products[1].Price)
	assert.Equal(t, 0.0, products[2].Price, "unparsable price derives to zero")
	assert.Equal(t, 2500.50, products[3].Price)
}

func TestFindByNameFirstRowWins(t *testing.T) {
	c := New([]Record{
		{"name": "Dup", "price": "100"},
		{"name": "Dup", "price": "999"},
	})

	p, ok := c.FindByName("Dup")
	require.True(t, ok)
	assert.Equal(t, 100.0, p.Price)
	assert.Equal(t, 2, c.Len(), "both rows stay in the listing")
}

func TestFindByNameMiss(t *testing.T) {
	c := New(testRecords())
	_, ok := c.FindByName("Нет такого")
	assert.False(t, ok)
}

func TestPriceOf(t *testing.T) {
	c := New(testRecords())

	price, ok := c.PriceOf("Хлеб")
	require.True(t, ok)
	assert.Equal(t, 300.0, price)

	_, ok = c.PriceOf("Нет такого")
	assert.False(t, ok)
}

func TestCategoriesSentinelAndOrder(t *testing.T) {
	c := New(testRecords())

	cats := c.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, AllCategories, cats[0])
	// Russian-locale order, duplicates collapsed.
	assert.Equal(t, []string{AllCategories, "Выпечка", "Молочное", "Фрукты"}, cats)
}

func TestCategoriesSkipsEmpty(t *testing.T) {
	c := New([]Record{
		{"name": "A", "price": "1", "category": ""},
		{"name": "B", "price": "2", "category": "  "},
	})
	assert.Equal(t, []string{AllCategories}, c.Categories())
}

func TestNumericPrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"500", 500},
		{"1 500 тг", 1500},
		{"2500.50", 2500.50},
		{"", 0},
		{"даром", 0},
		{"-100", 100}, // sign is stripped with the other non-digits
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NumericPrice(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseBadges(t *testing.T) {
	badges := ParseBadges(" eco | new ")
	require.Len(t, badges, 2)
	assert.Equal(t, Badge{Label: "ECO", Kind: BadgeEco}, badges[0])
	assert.Equal(t, Badge{Label: "NEW", Kind: BadgeNew}, badges[1])
}

func TestParseBadgesCapAndUnknownKind(t *testing.T) {
	badges := ParseBadges("bio|hit|sale|vip")
	require.Len(t, badges, 3, "badge list caps at three")
	assert.Equal(t, BadgeBio, badges[0].Kind)
	assert.Equal(t, BadgeHit, badges[1].Kind)
	assert.Equal(t, Badge{Label: "SALE", Kind: BadgeDefault}, badges[2])
}

func TestParseBadgesEmpty(t *testing.T) {
	assert.Nil(t, ParseBadges(""))
	assert.Nil(t, ParseBadges("  "))
	assert.Nil(t, ParseBadges(" | | "))
}
