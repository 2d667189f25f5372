package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: DBCATALOG_DATABASE__HOST sets database.host.
const EnvPrefix = "DBCATALOG_"

type DBConfig struct {
	Type         string `yaml:"type" json:"type"`
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" json:"dsn"` // optional explicit DSN
	// Timeout bounds connecting and pinging, in seconds.
	Timeout int `yaml:"timeout" json:"timeout"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// RuleConfig is one inclusion rule. ExcludeAll skips the category outright.
type RuleConfig struct {
	Include    string `yaml:"include" json:"include"`
	Exclude    string `yaml:"exclude" json:"exclude"`
	ExcludeAll bool   `yaml:"exclude_all" json:"exclude_all"`
}

type LimitsConfig struct {
	Schemas    RuleConfig `yaml:"schemas" json:"schemas"`
	Tables     RuleConfig `yaml:"tables" json:"tables"`
	Columns    RuleConfig `yaml:"columns" json:"columns"`
	Routines   RuleConfig `yaml:"routines" json:"routines"`
	Parameters RuleConfig `yaml:"parameters" json:"parameters"`
}

// CrawlConfig controls what a crawl retrieves and how. Durations are in
// seconds; zero means none. QueryTimeout bounds each metadata call, Deadline
// the crawl as a whole.
type CrawlConfig struct {
	InfoLevel     string            `yaml:"info_level" json:"info_level"`
	Strategies    map[string]string `yaml:"strategies" json:"strategies"`
	Limits        LimitsConfig      `yaml:"limits" json:"limits"`
	TableTypes    []string          `yaml:"table_types" json:"table_types"`
	NaturalOrder  bool              `yaml:"natural_order" json:"natural_order"`
	Deadline      int               `yaml:"deadline" json:"deadline"`
	QueryTimeout  int               `yaml:"query_timeout" json:"query_timeout"`
	RowLimit      int               `yaml:"row_limit" json:"row_limit"`
	Diagnostics   bool              `yaml:"diagnostics" json:"diagnostics"`
	VendorQueries map[string]string `yaml:"vendor_queries" json:"vendor_queries"`
}

type LintConfig struct {
	RunAll     bool   `yaml:"run_all" json:"run_all"`
	Parallel   bool   `yaml:"parallel" json:"parallel"`
	ConfigFile string `yaml:"config_file" json:"config_file"`
	// Linters are inline linter configs, placed before those of ConfigFile.
	Linters []map[string]any `yaml:"linters" json:"linters"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type AppConfig struct {
	Database DBConfig     `yaml:"database" json:"database"`
	Server   ServerConfig `yaml:"server" json:"server"`
	Crawl    CrawlConfig  `yaml:"crawl" json:"crawl"`
	Lint     LintConfig   `yaml:"lint" json:"lint"`
	Log      LogConfig    `yaml:"log" json:"log"`
}

// Defaults are the values every layer starts from.
func Defaults() map[string]any {
	return map[string]any{
		"database.timeout":    10,
		"server.port":         8080,
		"crawl.info_level":    "standard",
		"crawl.query_timeout": 0,
		"lint.run_all":        true,
		"log.level":           "info",
		"log.format":          "text",
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"type":          "database.type",
	"host":          "database.host",
	"port":          "database.port",
	"user":          "database.username",
	"password":      "database.password",
	"database":      "database.database_name",
	"dsn":           "database.dsn",
	"timeout":       "database.timeout",
	"listen":        "server.port",
	"info-level":    "crawl.info_level",
	"table-types":   "crawl.table_types",
	"natural-order": "crawl.natural_order",
	"query-timeout": "crawl.query_timeout",
	"deadline":      "crawl.deadline",
	"row-limit":     "crawl.row_limit",
	"diagnostics":   "crawl.diagnostics",
	"run-all":       "lint.run_all",
	"parallel":      "lint.parallel",
	"linter-config": "lint.config_file",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load builds the configuration from defaults, the YAML file at path (if
// any), DBCATALOG_ environment variables and the flags that were set, in
// increasing precedence.
func Load(path string, flags *pflag.FlagSet) (AppConfig, error) {
	var cfg AppConfig
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return cfg, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads YAML config from path, without defaults or overrides.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yamlv3.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "pgx":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	case "duckdb":
		return "duckdb"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres", "pgx":
		driver = t
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "duckdb":
		driver = "duckdb"
		dsn = db.DatabaseName
		if dsn != "" {
			dsn += "?access_mode=read_only"
		}
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
