package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbcatalog/internal/testutil"
	"dbcatalog/pkg/config"
)

// shopDB writes a small SQLite database and returns its path.
func shopDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()
	for _, stmt := range []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE orders (id INTEGER, customer_id INTEGER REFERENCES customers(id))`,
		`INSERT INTO customers (id, name) VALUES (1, 'ada')`,
	} {
		_, err := conn.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func testApp(t *testing.T) *app {
	t.Helper()
	return &app{
		cfg: config.AppConfig{
			Database: config.DBConfig{Timeout: 5},
			Crawl:    config.CrawlConfig{InfoLevel: "standard"},
			Lint:     config.LintConfig{RunAll: true},
		},
		log: testutil.NewTestLogger(t),
	}
}

func connect(t *testing.T, h http.Handler, c config.DBConfig) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(c)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/connect", bytes.NewReader(body)))
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCatalogNeedsConnection(t *testing.T) {
	h := newServer(testApp(t)).routes("")
	for _, path := range []string{"/api/catalog", "/api/lint"} {
		rec := get(h, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "no active connection")
	}
}

func TestConnectAndCrawl(t *testing.T) {
	s := newServer(testApp(t))
	h := s.routes("")

	rec := connect(t, h, config.DBConfig{Type: "sqlite3", DatabaseName: shopDB(t), Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK      bool        `json:"ok"`
		Catalog catalogView `json:"catalog"`
		Report  struct {
			Outcomes []map[string]any `json:"outcomes"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "sqlite", resp.Catalog.Dialect)
	require.Len(t, resp.Catalog.Schemas, 1)
	var names []string
	for _, tbl := range resp.Catalog.Schemas[0].Tables {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"customers", "orders"}, names)
	assert.NotEmpty(t, resp.Report.Outcomes)

	active, ok := s.getActive()
	require.True(t, ok)
	assert.Equal(t, 5, active.Timeout)

	rec = get(h, "/api/getConnect")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"sqlite"`)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = get(h, "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"customer_id"`)
}

func TestConnectRejects(t *testing.T) {
	h := newServer(testApp(t)).routes("")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/connect", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = connect(t, h, config.DBConfig{Type: "sqlite"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(h, "/api/connect")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLintEndpoint(t *testing.T) {
	h := newServer(testApp(t)).routes("")
	require.Equal(t, http.StatusOK, connect(t, h, config.DBConfig{Type: "sqlite", DatabaseName: shopDB(t)}).Code)

	rec := get(h, "/api/lint")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Lints []struct {
			ID     string `json:"id"`
			Target string `json:"target"`
		} `json:"lints"`
		Skipped []string `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Skipped)

	found := map[string]string{}
	for _, l := range res.Lints {
		found[l.ID+" "+l.Target] = l.ID
	}
	assert.Contains(t, found, "no-primary-key main.orders")
	assert.Contains(t, found, "empty-table main.orders")
	assert.NotContains(t, found, "empty-table main.customers")

	rec = get(h, "/api/lint?offline=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Skipped, "empty-table")
}

func TestDialectsAndLinters(t *testing.T) {
	h := newServer(testApp(t)).routes("")

	var dialects []dialectView
	require.NoError(t, json.Unmarshal(get(h, "/api/dialects").Body.Bytes(), &dialects))
	var names []string
	for _, d := range dialects {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "sqlite")
	assert.Contains(t, names, "postgres")

	var linters []linterView
	require.NoError(t, json.Unmarshal(get(h, "/api/linters").Body.Bytes(), &linters))
	require.NotEmpty(t, linters)
	assert.Equal(t, "no-primary-key", linters[0].ID)
}

func TestLinterConfigs(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "linters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: cycles\n  severity: low\n"), 0o600))
	a.cfg.Lint.ConfigFile = path
	a.cfg.Lint.Linters = []map[string]any{{"id": "no-indexes", "enabled": false}}

	configs, err := a.linterConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "no-indexes", configs[0].ID)
	assert.False(t, configs[0].IsEnabled())
	assert.Equal(t, "cycles", configs[1].ID)

	e, err := a.engine()
	require.NoError(t, err)
	assert.NotContains(t, e.IDs(), "no-indexes")
	assert.Contains(t, e.IDs(), "cycles")
}
