package forecast

import (
	"fmt"

	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// Engine drives the predictive model over a scaled window. The rollout is
// inherently sequential, but independent users' forecasts may run
// concurrently: the engine holds no mutable state.
type Engine struct {
	pre   *Preprocessor
	model Predictor
	log   *logrus.Logger
}

// NewEngine initializes a forecast engine. A nil model is allowed; forecast
// calls then fail with ErrModelUnavailable.
func NewEngine(pre *Preprocessor, model Predictor, log *logrus.Logger) *Engine {
	return &Engine{pre: pre, model: model, log: log}
}

// ForecastTotal predicts accumulated spending over the horizon. The result
// is clamped to be non-negative.
func (e *Engine) ForecastTotal(username string, horizonDays int) (*models.ExpenseForecast, error) {
	w, preds, err := e.rollout(username, horizonDays)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, p := range preds {
		total += w.Scaler.Inverse(p)
	}
	if total < 0 {
		total = 0
	}

	e.log.Infof("Forecast for %s: %.2f over %d days", username, total, horizonDays)
	return &models.ExpenseForecast{Username: username, HorizonDays: horizonDays, Total: total}, nil
}

// ForecastSeries predicts each day individually, tagged with its calendar
// date, alongside the trailing LookBack days of history for charting.
func (e *Engine) ForecastSeries(username string, horizonDays int) (*models.ForecastSeries, error) {
	w, preds, err := e.rollout(username, horizonDays)
	if err != nil {
		return nil, err
	}

	series := &models.ForecastSeries{Username: username}

	start := len(w.Daily) - LookBack
	for i := start; i < len(w.Daily); i++ {
		series.History = append(series.History, models.DailyPoint{
			Date:   w.Dates[i].Format("2006-01-02"),
			Amount: w.Daily[i],
		})
	}

	lastDate := w.Dates[len(w.Dates)-1]
	for i, p := range preds {
		series.Forecast = append(series.Forecast, models.DailyPoint{
			Date:   lastDate.AddDate(0, 0, i+1).Format("2006-01-02"),
			Amount: w.Scaler.Inverse(p),
		})
	}
	return series, nil
}

// rollout runs the autoregressive loop: each scaled prediction is appended
// to the window (dropping the oldest point) so the model always sees
// normalized inputs. Returned predictions are still in scaled units.
func (e *Engine) rollout(username string, horizonDays int) (*Window, []float64, error) {
	if e.model == nil {
		return nil, nil, models.ErrModelUnavailable
	}
	if horizonDays <= 0 {
		return nil, nil, fmt.Errorf("horizon must be positive, got %d", horizonDays)
	}

	w, err := e.pre.BuildWindow(username)
	if err != nil {
		return nil, nil, err
	}

	window := append([]float64(nil), w.Scaled...)
	preds := make([]float64, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		p, err := e.model.Predict(window)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to predict day %d: %w", i+1, err)
		}
		preds = append(preds, p)
		window = append(window[1:], p)
	}
	return w, preds, nil
}
