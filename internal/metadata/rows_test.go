package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowGetters(t *testing.T) {
	r := NewRow(map[string]any{
		"table_name":       []byte(" AUTHORS "),
		"ORDINAL_POSITION": int64(3),
		"COLUMN_SIZE":      "12",
		"DECIMAL_DIGITS":   float64(2),
		"IS_NULLABLE":      "YES",
		"NON_UNIQUE":       int64(0),
		"IS_GRANTABLE":     true,
		"REMARKS":          nil,
		"EXTRA":            []byte("x"),
	})

	assert.Equal(t, "AUTHORS", r.String("TABLE_NAME"))
	assert.Equal(t, 3, r.Int("ordinal_position", 0))
	assert.Equal(t, 12, r.Int("COLUMN_SIZE", 0))
	assert.Equal(t, 2, r.Int("DECIMAL_DIGITS", 0))
	assert.Equal(t, -1, r.Int("MISSING", -1))
	assert.True(t, r.Bool("IS_NULLABLE"))
	assert.False(t, r.Bool("NON_UNIQUE"))
	assert.True(t, r.Bool("IS_GRANTABLE"))
	assert.Equal(t, "", r.String("REMARKS"))
	assert.False(t, r.Has("REMARKS"))
	assert.True(t, r.Has("extra"))

	assert.Equal(t, map[string]any{"EXTRA": "x"}, r.Attributes())
}

func TestRowAttributesEmpty(t *testing.T) {
	r := NewRow(map[string]any{"A": 1})
	r.Int("A", 0)
	assert.Nil(t, r.Attributes())
}

func TestNewRowsAndCollect(t *testing.T) {
	rows := NewRows(
		map[string]any{"NAME": "a"},
		map[string]any{"NAME": "b"},
	)
	got, err := Collect(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].String("NAME"))
	assert.Equal(t, "b", got[1].String("NAME"))
	assert.False(t, rows.Next(), "closed rows yield nothing")
}

func TestMap(t *testing.T) {
	rows := Map(NewRows(map[string]any{"SQL": "x"}), func(r *Row) {
		r.Set("EXTRA", "y")
	})
	got, err := Collect(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].String("EXTRA"))
}

func TestObjectIsAll(t *testing.T) {
	assert.True(t, All.IsAll())
	assert.False(t, Object{Schema: "PUBLIC"}.IsAll())
	assert.False(t, Object{Schema: "PUBLIC", Name: "T"}.IsAll())
}
