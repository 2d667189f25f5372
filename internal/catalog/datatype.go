package catalog

import "strings"

// Vendor-neutral type codes, numbered as the JDBC type constants so that
// drivers reporting numeric codes line up with names resolved here.
const (
	TypeBit           = -7
	TypeTinyInt       = -6
	TypeBigInt        = -5
	TypeLongVarBinary = -4
	TypeVarBinary     = -3
	TypeBinary        = -2
	TypeLongVarChar   = -1
	TypeNull          = 0
	TypeChar          = 1
	TypeNumeric       = 2
	TypeDecimal       = 3
	TypeInteger       = 4
	TypeSmallInt      = 5
	TypeFloat         = 6
	TypeReal          = 7
	TypeDouble        = 8
	TypeVarChar       = 12
	TypeBoolean       = 16
	TypeDate          = 91
	TypeTime          = 92
	TypeTimestamp     = 93
	TypeOther         = 1111
	TypeArray         = 2003
	TypeBlob          = 2004
	TypeClob          = 2005
	TypeNChar         = -15
	TypeNVarChar      = -9
	TypeLongNVarChar  = -16
	TypeNClob         = 2011
	TypeSQLXML        = 2009
)

var typeCodes = map[string]int{
	"BIT":                         TypeBit,
	"TINYINT":                     TypeTinyInt,
	"BIGINT":                      TypeBigInt,
	"INT8":                        TypeBigInt,
	"BIGSERIAL":                   TypeBigInt,
	"LONGBLOB":                    TypeLongVarBinary,
	"MEDIUMBLOB":                  TypeLongVarBinary,
	"IMAGE":                       TypeLongVarBinary,
	"VARBINARY":                   TypeVarBinary,
	"BINARY":                      TypeBinary,
	"LONGTEXT":                    TypeLongVarChar,
	"MEDIUMTEXT":                  TypeLongVarChar,
	"TEXT":                        TypeLongVarChar,
	"NTEXT":                       TypeLongNVarChar,
	"CHAR":                        TypeChar,
	"CHARACTER":                   TypeChar,
	"BPCHAR":                      TypeChar,
	"NUMERIC":                     TypeNumeric,
	"NUMBER":                      TypeNumeric,
	"DECIMAL":                     TypeDecimal,
	"INT":                         TypeInteger,
	"INTEGER":                     TypeInteger,
	"INT4":                        TypeInteger,
	"SERIAL":                      TypeInteger,
	"MEDIUMINT":                   TypeInteger,
	"SMALLINT":                    TypeSmallInt,
	"INT2":                        TypeSmallInt,
	"FLOAT":                       TypeFloat,
	"FLOAT8":                      TypeDouble,
	"REAL":                        TypeReal,
	"FLOAT4":                      TypeReal,
	"DOUBLE":                      TypeDouble,
	"DOUBLE PRECISION":            TypeDouble,
	"VARCHAR":                     TypeVarChar,
	"VARCHAR2":                    TypeVarChar,
	"CHARACTER VARYING":           TypeVarChar,
	"NVARCHAR":                    TypeNVarChar,
	"NVARCHAR2":                   TypeNVarChar,
	"NCHAR":                       TypeNChar,
	"BOOLEAN":                     TypeBoolean,
	"BOOL":                        TypeBoolean,
	"DATE":                        TypeDate,
	"TIME":                        TypeTime,
	"TIME WITHOUT TIME ZONE":      TypeTime,
	"TIMESTAMP":                   TypeTimestamp,
	"DATETIME":                    TypeTimestamp,
	"DATETIME2":                   TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": TypeTimestamp,
	"TIMESTAMP WITH TIME ZONE":    TypeTimestamp,
	"TIMESTAMPTZ":                 TypeTimestamp,
	"ARRAY":                       TypeArray,
	"BLOB":                        TypeBlob,
	"BYTEA":                       TypeBlob,
	"CLOB":                        TypeClob,
	"NCLOB":                       TypeNClob,
	"XML":                         TypeSQLXML,
}

func normalizeTypeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

// TypeCode maps a vendor type name to a type code, or TypeOther when the
// name is not recognised. Length and precision suffixes are ignored.
func TypeCode(name string) int {
	if code, ok := typeCodes[normalizeTypeName(name)]; ok {
		return code
	}
	return TypeOther
}
