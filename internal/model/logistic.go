// Package model implements the binary logistic regression classifier used
// for attrition scoring.
package model

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the optimizer hyperparameters.
type Config struct {
	LearningRate float64
	MaxIter      int
	Tolerance    float64
}

// DefaultConfig returns an iteration budget generous enough that the
// optimizer reliably converges on this feature dimensionality.
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.1,
		MaxIter:      2000,
		Tolerance:    1e-6,
	}
}

// LogisticRegression is a fitted binary classifier. Weights are learned by
// full-batch gradient descent from zero initialization, so fitting the
// same data always yields the same parameters.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	// ClassWeights holds the inverse-frequency weights used at fit time,
	// indexed by class label.
	ClassWeights [2]float64 `json:"class_weights"`
	// Converged is false when the iteration budget ran out before the loss
	// stabilized. Training still completes; callers should surface this.
	Converged  bool `json:"converged"`
	Iterations int  `json:"iterations"`
}

// Fit trains the classifier on standardized features. Each class is
// weighted inversely proportional to its frequency so the minority
// attrition class is not drowned out.
func Fit(features [][]float64, labels []int, cfg Config) (*LogisticRegression, error) {
	if len(features) == 0 {
		return nil, errors.New("no training examples")
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(features), len(labels))
	}
	if cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("iteration budget must be positive, got %d", cfg.MaxIter)
	}

	width := len(features[0])
	counts := [2]int{}
	for i, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("ragged feature row %d: width %d, expected %d", i, len(row), width)
		}
		y := labels[i]
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("label %d at row %d is not binary", y, i)
		}
		counts[y]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return nil, errors.New("training data must contain both classes")
	}

	n := float64(len(features))
	m := &LogisticRegression{
		Weights: make([]float64, width),
		ClassWeights: [2]float64{
			n / (2 * float64(counts[0])),
			n / (2 * float64(counts[1])),
		},
	}

	grad := make([]float64, width)
	prevLoss := math.Inf(1)
	for iter := 1; iter <= cfg.MaxIter; iter++ {
		loss := 0.0
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range features {
			p := m.prob(row)
			y := labels[i]
			w := m.ClassWeights[y]

			loss += w * bceLoss(y, p)
			d := w * (p - float64(y)) / n
			for j, x := range row {
				grad[j] += d * x
			}
			gradBias += d
		}
		loss /= n

		for j := range m.Weights {
			m.Weights[j] -= cfg.LearningRate * grad[j]
		}
		m.Bias -= cfg.LearningRate * gradBias

		m.Iterations = iter
		// No baseline to compare against on the first pass.
		if !math.IsInf(prevLoss, 1) && math.Abs(prevLoss-loss) <= cfg.Tolerance*math.Max(1, math.Abs(prevLoss)) {
			m.Converged = true
			break
		}
		prevLoss = loss
	}

	return m, nil
}

// PredictProba returns the positive-class probability for each row.
func (m *LogisticRegression) PredictProba(features [][]float64) []float64 {
	out := make([]float64, len(features))
	for i, row := range features {
		out[i] = m.prob(row)
	}
	return out
}

// Predict thresholds the positive-class probability at 0.5.
func (m *LogisticRegression) Predict(features [][]float64) []int {
	proba := m.PredictProba(features)
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (m *LogisticRegression) prob(row []float64) float64 {
	z := m.Bias
	for j, x := range row {
		z += m.Weights[j] * x
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	// Split on sign to avoid overflow in exp for large |z|.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func bceLoss(y int, p float64) float64 {
	const eps = 1e-12
	p = math.Min(math.Max(p, eps), 1-eps)
	if y == 1 {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}
