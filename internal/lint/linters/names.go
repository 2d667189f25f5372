package linters

import (
	"regexp"
	"strings"

	"dbcatalog/internal/catalog"
)

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedWords are SQL:2016 reserved words common to the supported
// databases.
var reservedWords = toSet(`
ALL ALLOCATE ALTER AND ANY ARE ARRAY AS ASYMMETRIC AT AUTHORIZATION BEGIN BETWEEN BIGINT BINARY
BLOB BOOLEAN BOTH BY CALL CALLED CASCADED CASE CAST CHAR CHARACTER CHECK CLOB CLOSE COLLATE
COLUMN COMMIT CONDITION CONNECT CONSTRAINT CONTINUE CORRESPONDING CREATE CROSS CUBE CURRENT
CURRENT_DATE CURRENT_TIME CURRENT_TIMESTAMP CURRENT_USER CURSOR CYCLE DATE DAY DEALLOCATE DEC
DECIMAL DECLARE DEFAULT DELETE DEREF DESCRIBE DETERMINISTIC DISCONNECT DISTINCT DO DOUBLE DROP
DYNAMIC EACH ELEMENT ELSE ELSEIF END ESCAPE EXCEPT EXEC EXECUTE EXISTS EXIT EXTERNAL FALSE FETCH
FILTER FLOAT FOR FOREIGN FREE FROM FULL FUNCTION GET GLOBAL GRANT GROUP GROUPING HANDLER HAVING
HOLD HOUR IDENTITY IF IN INDICATOR INNER INOUT INSENSITIVE INSERT INT INTEGER INTERSECT INTERVAL
INTO IS ITERATE JOIN LANGUAGE LARGE LATERAL LEADING LEAVE LEFT LIKE LOCAL LOCALTIME
LOCALTIMESTAMP LOOP MATCH MEMBER MERGE METHOD MINUTE MODIFIES MODULE MONTH MULTISET NATIONAL
NATURAL NCHAR NCLOB NEW NO NONE NOT NULL NUMERIC OF OLD ON ONLY OPEN OR ORDER OUT OUTER OUTPUT
OVER OVERLAPS PARAMETER PARTITION PRECISION PREPARE PRIMARY PROCEDURE RANGE READS REAL RECURSIVE
REF REFERENCES REFERENCING RELEASE REPEAT RESIGNAL RESULT RETURN RETURNS REVOKE RIGHT ROLLBACK
ROLLUP ROW ROWS SAVEPOINT SCOPE SCROLL SEARCH SECOND SELECT SENSITIVE SESSION_USER SET SIGNAL
SIMILAR SMALLINT SOME SPECIFIC SPECIFICTYPE SQL SQLEXCEPTION SQLSTATE SQLWARNING START STATIC
SUBMULTISET SYMMETRIC SYSTEM SYSTEM_USER TABLE TABLESAMPLE THEN TIME TIMESTAMP TIMEZONE_HOUR
TIMEZONE_MINUTE TO TRAILING TRANSLATION TREAT TRIGGER TRUE UNDO UNION UNIQUE UNKNOWN UNNEST
UNTIL UPDATE USER USING VALUE VALUES VARCHAR VARYING WHEN WHENEVER WHERE WHILE WINDOW WITH
WITHIN WITHOUT YEAR
`)

func toSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// needsQuotes reports whether name can only be used as a quoted identifier.
func needsQuotes(name string) bool {
	return !plainIdentifier.MatchString(name) || reservedWords[strings.ToUpper(name)]
}

// quoting holds a dialect's identifier delimiters.
type quoting struct{ open, close string }

var (
	ansiQuoting    = quoting{`"`, `"`}
	dialectQuoting  = map[string]quoting{
		"mysql":     {"`", "`"},
		"sqlserver": {"[", "]"},
	}
)

func quotingFor(dialect string) quoting {
	if q, ok := dialectQuoting[dialect]; ok {
		return q
	}
	return ansiQuoting
}

func (q quoting) identifier(name string) string {
	if !needsQuotes(name) {
		return name
	}
	return q.open + strings.ReplaceAll(name, q.close, q.close+q.close) + q.close
}

// quotedTableName returns the table's qualified name ready for use in SQL
// against dialect. Blank catalogs and MySQL's constant "def" catalog are left
// out.
func quotedTableName(dialect string, t *catalog.Table) string {
	q := quotingFor(dialect)
	k := t.Key()
	parts := make([]string, 0, 3)
	if k.Catalog != "" && !strings.EqualFold(k.Catalog, "def") {
		parts = append(parts, q.identifier(k.Catalog))
	}
	for _, p := range []string{k.Schema, k.Name} {
		if p != "" {
			parts = append(parts, q.identifier(p))
		}
	}
	return strings.Join(parts, ".")
}
