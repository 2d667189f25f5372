package metadata

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementBuild(t *testing.T) {
	st := Statement{
		SQL:        "SELECT x FROM t WHERE 1 = 1",
		SchemaExpr: "t.s",
		NameExpr:   "t.n",
		OrderBy:    "t.s, t.n",
	}

	tests := []struct {
		name     string
		obj      Object
		bind     Bind
		wantSQL  string
		wantArgs []any
	}{
		{"all", All, BindQuestion, "SELECT x FROM t WHERE 1 = 1 ORDER BY t.s, t.n", nil},
		{"schema", Object{Schema: "PUBLIC"}, BindDollar,
			"SELECT x FROM t WHERE 1 = 1 AND t.s = $1 ORDER BY t.s, t.n", []any{"PUBLIC"}},
		{"table", Object{Schema: "PUBLIC", Name: "T"}, BindAtP,
			"SELECT x FROM t WHERE 1 = 1 AND t.s = @p1 AND t.n = @p2 ORDER BY t.s, t.n", []any{"PUBLIC", "T"}},
		{"oracle binds", Object{Schema: "HR", Name: "EMP"}, BindColon,
			"SELECT x FROM t WHERE 1 = 1 AND t.s = :1 AND t.n = :2 ORDER BY t.s, t.n", []any{"HR", "EMP"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args, err := st.Build(tt.obj, tt.bind)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStatementBuildUnsupported(t *testing.T) {
	_, _, err := Statement{}.Build(All, BindQuestion)
	assert.ErrorIs(t, err, ErrUnsupported)

	st := Statement{SQL: "SELECT 1 WHERE 1 = 1", SchemaExpr: "s"}
	_, _, err = st.Build(Object{Schema: "S", Name: "T"}, BindQuestion)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestInfoSchemaColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns c")).
		WithArgs("public", "authors").
		WillReturnRows(sqlmock.NewRows([]string{"table_cat", "table_schem", "table_name", "column_name", "ordinal_position", "type_name"}).
			AddRow("books", "public", "authors", "id", 1, "integer").
			AddRow("books", "public", "authors", "name", 2, "character varying"))

	src := NewInfoSchema(db, BindDollar, nil)
	rows, err := src.Columns(context.Background(), Object{Schema: "public", Name: "authors"})
	require.NoError(t, err)
	got, err := Collect(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "name", got[1].String("COLUMN_NAME"))
	assert.Equal(t, 2, got[1].Int("ORDINAL_POSITION", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInfoSchemaIndexesUnsupportedByDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := NewInfoSchema(db, nil, nil)
	_, err = src.Indexes(context.Background(), All)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query is issued")
}

func TestInfoSchemaOverride(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM my_indexes WHERE 1 = 1 AND s = ?")).
		WithArgs("app").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME"}).AddRow("ix"))

	src := NewInfoSchema(db, BindQuestion, map[Method]Statement{
		MethodIndexes: {SQL: "SELECT INDEX_NAME FROM my_indexes WHERE 1 = 1", SchemaExpr: "s", NameExpr: "n"},
	})
	rows, err := src.Indexes(context.Background(), Object{Schema: "app"})
	require.NoError(t, err)
	got, err := Collect(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInfoSchemaQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.triggers").WillReturnError(assert.AnError)

	src := NewInfoSchema(db, BindQuestion, nil)
	_, err = src.Triggers(context.Background(), All)
	require.Error(t, err)
	assert.True(t, errors.Is(err, assert.AnError))
	assert.False(t, errors.Is(err, ErrUnsupported))
	assert.Contains(t, err.Error(), "query triggers")
}
