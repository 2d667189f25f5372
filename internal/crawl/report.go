package crawl

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one category.
type Status int

const (
	// StatusComplete means every row was retrieved and merged.
	StatusComplete Status = iota
	// StatusExcluded means an exclude-all rule skipped the category without
	// issuing a call.
	StatusExcluded
	// StatusNotRequested means the info level does not include the category.
	StatusNotRequested
	// StatusUnsupported means the source cannot answer the category.
	StatusUnsupported
	// StatusMisconfigured means the selected strategy cannot run as
	// configured.
	StatusMisconfigured
	// StatusIncomplete means some rows could not be retrieved.
	StatusIncomplete
	// StatusFailed means the connection broke and the crawl stopped.
	StatusFailed
)

var statusNames = [...]string{"complete", "excluded", "not-requested", "unsupported", "misconfigured", "incomplete", "failed"}

func (s Status) String() string {
	if s < StatusComplete || s > StatusFailed {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome records what happened to one category.
type Outcome struct {
	Category  Category      `json:"category"`
	Strategy  Strategy      `json:"strategy"`
	Status    Status        `json:"status"`
	Rows      int           `json:"rows"`
	Filtered  int           `json:"filtered"`
	Dropped   int           `json:"dropped"`
	Truncated bool          `json:"truncated,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	Err       error         `json:"-"`
}

// Error returns the outcome error text, or "".
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Report lists the outcome of every category of a crawl, in phase order.
type Report struct {
	CrawlID  uuid.UUID `json:"crawl_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome returns the outcome recorded for c.
func (r *Report) Outcome(c Category) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Category == c {
			return o, true
		}
	}
	return Outcome{}, false
}

// Complete reports whether no category lost data.
func (r *Report) Complete() bool {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusComplete, StatusExcluded, StatusNotRequested:
		default:
			return false
		}
	}
	return true
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}
