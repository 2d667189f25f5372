package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		include string
		exclude string
		in      []string
		out     []string
	}{
		{
			name:    "schema suffix",
			include: ".*FOR_LINT",
			in:      []string{"PUBLIC.FOR_LINT"},
			out:     []string{"PUBLIC.BOOKS", "PUBLIC.FOR_LINT.EXTRA"},
		},
		{
			name:    "ordinal suffixed columns",
			exclude: `.*\..*\..*[123]`,
			in:      []string{"PUBLIC.FOR_LINT.WRITERS.COUNTRY", "PUBLIC.FOR_LINT.WRITERS.ADDRESS4"},
			out:     []string{"PUBLIC.FOR_LINT.WRITERS.ADDRESS1", "PUBLIC.FOR_LINT.WRITERS.ADDRESS2"},
		},
		{
			name:    "include and exclude",
			include: "PUBLIC\\..*",
			exclude: ".*\\.TEMP_.*",
			in:      []string{"PUBLIC.BOOKS"},
			out:     []string{"PUBLIC.TEMP_X", "OTHER.BOOKS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.include, tt.exclude)
			require.NoError(t, err)
			for _, name := range tt.in {
				assert.True(t, r.Test(name), name)
			}
			for _, name := range tt.out {
				assert.False(t, r.Test(name), name)
			}
		})
	}
}

func TestNewFastPaths(t *testing.T) {
	r, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, IncludeAll, r)
	assert.False(t, IsExcludeAll(r))

	r, err = New(".*", "")
	require.NoError(t, err)
	assert.Equal(t, IncludeAll, r)

	r, err = New("PUBLIC.*", ".*")
	require.NoError(t, err)
	assert.True(t, IsExcludeAll(r))
	assert.False(t, r.Test("PUBLIC.BOOKS"))

	assert.True(t, IsExcludeAll(ExcludeAll))
	assert.False(t, IsExcludeAll(nil))
	assert.False(t, IsExcludeAll(MustNew("A", "")))
}

func TestNewInvalid(t *testing.T) {
	_, err := New("(", "")
	assert.ErrorContains(t, err, "include pattern")

	_, err = New("", "[")
	assert.ErrorContains(t, err, "exclude pattern")

	assert.Panics(t, func() { MustNew("(", "") })
}

func TestOrAll(t *testing.T) {
	assert.Equal(t, IncludeAll, OrAll(nil))
	assert.Equal(t, ExcludeAll, OrAll(ExcludeAll))
}
