package forecast

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Kamran7679/finance-tracker/internal/models"
)

// Predictor produces the next scaled daily total given the trailing window.
// The engine treats the model as opaque.
type Predictor interface {
	Predict(window []float64) (float64, error)
}

// weightsArtifact is the exported-model file format: one weight per window
// position plus a bias, produced by the offline training pipeline.
type weightsArtifact struct {
	LookBack int       `json:"look_back"`
	Weights  []float64 `json:"weights"`
	Bias     float64   `json:"bias"`
}

type linearModel struct {
	weights []float64
	bias    float64
}

func (m *linearModel) Predict(window []float64) (float64, error) {
	if len(window) != len(m.weights) {
		return 0, fmt.Errorf("window length %d, model expects %d", len(window), len(m.weights))
	}
	v := m.bias
	for i, w := range m.weights {
		v += w * window[i]
	}
	return v, nil
}

// LoadModel reads a trained model artifact. A missing file maps to
// ErrModelUnavailable so callers can tell "not trained yet" from corruption.
func LoadModel(path string) (Predictor, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", models.ErrModelUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var art weightsArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if art.LookBack != LookBack || len(art.Weights) != art.LookBack {
		return nil, fmt.Errorf("model shape mismatch: look_back=%d, weights=%d", art.LookBack, len(art.Weights))
	}
	return &linearModel{weights: art.Weights, bias: art.Bias}, nil
}
