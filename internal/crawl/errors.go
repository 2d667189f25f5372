package crawl

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"dbcatalog/internal/metadata"
)

var (
	// ErrQueryMissing means bulk-query-all was selected for a category
	// without a vendor query configured for it.
	ErrQueryMissing = errors.New("no vendor query configured")
	// ErrConnection marks failures that leave the connection unusable.
	// They abort the crawl.
	ErrConnection = errors.New("database connection failed")
)

// QueryMissingError names the category whose vendor query is missing.
type QueryMissingError struct {
	Category Category
}

func (e *QueryMissingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, ErrQueryMissing)
}

func (e *QueryMissingError) Unwrap() error { return ErrQueryMissing }

func isFatal(err error) bool {
	return errors.Is(err, ErrConnection) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone)
}

// onlyUnsupported reports whether every error in a possibly joined err is
// an ErrUnsupported.
func onlyUnsupported(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		if len(errs) == 0 {
			return false
		}
		for _, e := range errs {
			if !onlyUnsupported(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, metadata.ErrUnsupported)
}

// classify maps a retrieval error to the status of its category. Fatal
// connection errors win over data access errors, which win over
// unsupported calls.
func classify(err error) Status {
	switch {
	case err == nil:
		return StatusComplete
	case isFatal(err):
		return StatusFailed
	case errors.Is(err, ErrQueryMissing):
		return StatusMisconfigured
	case onlyUnsupported(err):
		return StatusUnsupported
	}
	return StatusIncomplete
}
