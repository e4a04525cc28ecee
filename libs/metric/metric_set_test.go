package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockItem struct{ name string }

func (m *mockItem) JSONString() string { return m.name }

func newTestSet() *Set {
	s := NewSet()
	s.metrics["TEST"] = &mockItem{name: "TEST"}
	return s
}

func TestSet_Has(t *testing.T) {
	s := newTestSet()
	assert.True(t, s.Has("TEST"))
	assert.False(t, s.Has("MISSING"))
}

func TestSet_Register(t *testing.T) {
	s := newTestSet()

	assert.ErrorIs(t, s.Register("TEST", &mockItem{name: "TEST"}), ErrLabelExists)
	assert.NoError(t, s.Register("TEST2", &mockItem{name: "TEST2"}))
	assert.True(t, s.Has("TEST2"))
}

func TestSet_Labels(t *testing.T) {
	s := newTestSet()
	assert.Equal(t, []string{"TEST"}, s.Labels())
}
