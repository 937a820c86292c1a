package forecast

import (
	"fmt"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/Kamran7679/finance-tracker/internal/repository"
	"github.com/sirupsen/logrus"
)

// LookBack is the window length the predictive model consumes.
const LookBack = 30

// Window is the model-ready view of one user's spending history. The scaler
// must be retained with the window: forecasts are inverse-scaled with the
// same parameters that scaled the input.
type Window struct {
	Scaled []float64 // last LookBack daily totals, scaled into [0,1]
	Scaler MinMaxScaler
	Daily  []float64 // full unscaled daily series
	Dates  []time.Time
}

// Preprocessor builds scaled windows from the transaction log.
type Preprocessor struct {
	txlog *repository.TransactionLog
	log   *logrus.Logger
}

// NewPreprocessor initializes a preprocessor over the given log
func NewPreprocessor(txlog *repository.TransactionLog, log *logrus.Logger) *Preprocessor {
	return &Preprocessor{txlog: txlog, log: log}
}

// BuildWindow resamples the user's expense history into daily totals with
// zero-filled gaps, fits a min-max scale over the entire series, and returns
// the scaled trailing window. Fails with ErrInsufficientHistory below
// LookBack days of history.
func (p *Preprocessor) BuildWindow(username string) (*Window, error) {
	records, err := p.txlog.ReadAllFor(username)
	if err != nil {
		return nil, err
	}

	totals := make(map[time.Time]float64)
	var first, last time.Time
	for _, rec := range records {
		if rec.Kind != models.KindExpense && rec.Kind != models.KindRecurringExpense {
			continue
		}
		day := toDay(rec.Timestamp)
		totals[day] += rec.Amount.InexactFloat64()
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("%w: no expense records for %s", models.ErrInsufficientHistory, username)
	}

	// One bucket per calendar day from first to last expense, gaps as zero.
	var daily []float64
	var dates []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		daily = append(daily, totals[day])
		dates = append(dates, day)
	}
	if len(daily) < LookBack {
		return nil, fmt.Errorf("%w: have %d days, need %d", models.ErrInsufficientHistory, len(daily), LookBack)
	}

	// The scale is fit on the whole series, not just the trailing window.
	scaler := FitScaler(daily)
	window := daily[len(daily)-LookBack:]
	scaled := make([]float64, LookBack)
	for i, v := range window {
		scaled[i] = scaler.Scale(v)
	}

	p.log.Debugf("Built %d-day window for %s from %d days of history", LookBack, username, len(daily))
	return &Window{Scaled: scaled, Scaler: scaler, Daily: daily, Dates: dates}, nil
}

func toDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
