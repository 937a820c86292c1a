// Package forecast prepares per-user spending series and drives the
// predictive model through an autoregressive rollout.
package forecast

// MinMaxScaler linearly maps values into [0,1] using bounds fit on one
// user's own history, so a single model generalizes across users with very
// different spending magnitudes.
type MinMaxScaler struct {
	Min float64
	Max float64
}

// FitScaler computes scale bounds over the full series.
func FitScaler(series []float64) MinMaxScaler {
	if len(series) == 0 {
		return MinMaxScaler{}
	}
	s := MinMaxScaler{Min: series[0], Max: series[0]}
	for _, v := range series[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// Scale maps a value into [0,1]. A degenerate range (all history equal)
// maps everything to zero rather than dividing by zero.
func (s MinMaxScaler) Scale(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Inverse maps a scaled prediction back to currency units. A degenerate
// range inverts to zero, so flat histories forecast zero spend.
func (s MinMaxScaler) Inverse(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return v*(s.Max-s.Min) + s.Min
}
