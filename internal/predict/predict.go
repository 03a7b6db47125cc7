// Package predict scores new employee records against a persisted
// artifact, independent of the training process's lifetime.
package predict

import (
	"fmt"
	"strings"

	"hr-attrition/internal/artifact"
	"hr-attrition/internal/dataset"
)

// SchemaMismatchError reports feature columns required by the artifact
// that are absent from the inference batch. Absent columns are never
// silently substituted.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("inference batch is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Prediction is the score for one record, in input order.
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

// Predictor applies a loaded artifact to record batches. It never mutates
// the artifact.
type Predictor struct {
	bundle *artifact.Artifact
}

// New wraps a loaded artifact.
func New(bundle *artifact.Artifact) *Predictor {
	return &Predictor{bundle: bundle}
}

// Score transforms and scores the batch, preserving input order. The batch
// schema does not need to match the training-time schema exactly, but
// every feature column recorded in the artifact must be present somewhere
// in the batch; otherwise Score fails fast naming the missing columns.
// Categorical values never seen at fit time are tolerated (zero-vector
// encoding), not errors.
func (p *Predictor) Score(records []dataset.Record) ([]Prediction, error) {
	if len(records) == 0 {
		return nil, nil
	}

	seen := map[string]struct{}{}
	for _, r := range records {
		for col := range r {
			seen[col] = struct{}{}
		}
	}
	var missing []string
	for _, f := range p.bundle.FeatureSet {
		if _, ok := seen[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Missing: missing}
	}

	features := p.bundle.Transform.Apply(records)
	proba := p.bundle.Model.PredictProba(features)

	out := make([]Prediction, len(records))
	for i, prob := range proba {
		label := 0
		if prob >= 0.5 {
			label = 1
		}
		out[i] = Prediction{Label: label, Probability: prob}
	}
	return out, nil
}
