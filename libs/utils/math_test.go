package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMax(t *testing.T) {
	assert.Equal(t, -1.0, Max())
	assert.Equal(t, 3.0, Max(1, 3, 2))
}

func TestMin(t *testing.T) {
	assert.Equal(t, -1.0, Min())
	assert.Equal(t, 1.0, Min(3, 1, 2))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, -1.0, Median())
	assert.Equal(t, 2.0, Median(3, 1, 2))
	assert.Equal(t, 2.5, Median(1, 2, 3, 4))
}

func TestAvg(t *testing.T) {
	assert.Equal(t, -1.0, Avg())
	assert.Equal(t, 2.0, Avg(1, 2, 3))
}
