// Package pipeline wires the training path together: resolve schema,
// partition, fit the transform and classifier on the train side only,
// evaluate on the holdout, and assemble the persistable artifact.
package pipeline

import (
	"time"

	"github.com/rs/zerolog/log"

	"hr-attrition/internal/artifact"
	"hr-attrition/internal/dataset"
	"hr-attrition/internal/eval"
	"hr-attrition/internal/model"
	"hr-attrition/internal/preprocess"
	"hr-attrition/internal/schema"
)

// Options are the training knobs; zero values are filled with the
// reference defaults.
type Options struct {
	Holdout      float64
	Seed         int64
	LearningRate float64
	MaxIter      int
	Tolerance    float64
}

func (o Options) withDefaults() Options {
	if o.Holdout == 0 {
		o.Holdout = 0.2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	def := model.DefaultConfig()
	if o.LearningRate == 0 {
		o.LearningRate = def.LearningRate
	}
	if o.MaxIter == 0 {
		o.MaxIter = def.MaxIter
	}
	if o.Tolerance == 0 {
		o.Tolerance = def.Tolerance
	}
	return o
}

// Result is a completed training run, ready to persist and report.
type Result struct {
	Artifact  *artifact.Artifact
	Metrics   eval.Result
	TrainRows int
	TestRows  int
	Excluded  int
	Converged bool
}

// Train runs the full training path over raw records. columns is the
// record schema as reported by the store; source names the data origin
// for error context.
func Train(records []dataset.Record, columns []string, source string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	labeled, err := dataset.Label(records, source)
	if err != nil {
		return nil, err
	}
	if labeled.Excluded > 0 {
		log.Warn().
			Int("excluded", labeled.Excluded).
			Str("source", source).
			Msg("dropped rows with unmappable attrition labels")
	}

	features := schema.Resolve(schema.Candidates(), columns)
	log.Info().
		Int("rows", len(labeled.Records)).
		Int("features", len(features)).
		Float64("positive_rate", labeled.PositiveRate()).
		Msg("dataset labeled and schema resolved")

	split, err := dataset.Partition(labeled, opts.Holdout, opts.Seed)
	if err != nil {
		return nil, err
	}

	transform, err := preprocess.Fit(split.TrainRecords, features)
	if err != nil {
		return nil, err
	}

	clf, err := model.Fit(transform.Apply(split.TrainRecords), split.TrainLabels, model.Config{
		LearningRate: opts.LearningRate,
		MaxIter:      opts.MaxIter,
		Tolerance:    opts.Tolerance,
	})
	if err != nil {
		return nil, err
	}
	if !clf.Converged {
		log.Warn().
			Int("iterations", clf.Iterations).
			Msg("classifier did not converge within the iteration budget; artifact will still be produced")
	}

	testFeatures := transform.Apply(split.TestRecords)
	metrics := eval.Evaluate(split.TestLabels, clf.Predict(testFeatures), clf.PredictProba(testFeatures))

	return &Result{
		Artifact: &artifact.Artifact{
			FeatureSet: features,
			Transform:  transform,
			Model:      clf,
			Meta: artifact.Meta{
				CreatedAt:    time.Now().UTC(),
				TrainRows:    len(split.TrainRecords),
				PositiveRate: labeled.PositiveRate(),
			},
		},
		Metrics:   metrics,
		TrainRows: len(split.TrainRecords),
		TestRows:  len(split.TestRecords),
		Excluded:  labeled.Excluded,
		Converged: clf.Converged,
	}, nil
}
