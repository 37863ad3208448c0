package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	off, lim := Calculate(1, 10)
	assert.Equal(t, 0, off)
	assert.Equal(t, 10, lim)

	off, lim = Calculate(3, 10)
	assert.Equal(t, 20, off)
	assert.Equal(t, 10, lim)

	off, lim = Calculate(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, DefaultPageSize, lim)

	_, lim = Calculate(1, 1000)
	assert.Equal(t, MaxPageSize, lim)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))

	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)
	_, ok = ParseID("0")
	assert.False(t, ok)
	_, ok = ParseID("-1")
	assert.False(t, ok)
	_, ok = ParseID("abc")
	assert.False(t, ok)
}

func TestTotalPages(t *testing.T) {
	assert.EqualValues(t, 0, TotalPages(0, 20))
	assert.EqualValues(t, 1, TotalPages(20, 20))
	assert.EqualValues(t, 2, TotalPages(21, 20))
}
