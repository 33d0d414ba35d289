package audit

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
)

// ErrNotFound is returned when a run id has no row.
var ErrNotFound = errors.New("run not found")

// #region run
// Run is one audited screening: the input record, the evaluation date, and
// what came out of it. RecordJSON and SummaryJSON are the interchange forms.
type Run struct {
	RunID       string
	AsOf        crecord.Date
	Person      string
	RecordJSON  string
	SummaryJSON string
	EvalJSON    string
	Petitions   petition.Petitions
	Passed      bool
	CreatedAt   time.Time
}

// #endregion run
