// Command train runs the attrition training pipeline: it reads the full
// employee record store, trains and evaluates the classifier, prints the
// evaluation report, and atomically persists the artifact.
package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hr-attrition/internal/artifact"
	"hr-attrition/internal/cfg"
	"hr-attrition/internal/pipeline"
	"hr-attrition/internal/runhistory"
	"hr-attrition/internal/store"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := store.Open(c.DBPath, c.EmployeesTable)
	if err != nil {
		log.Fatal().Err(err).Msg("record store unavailable")
	}
	defer db.Close()

	records, err := db.Snapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("reading employee records failed")
	}
	columns, err := db.Columns()
	if err != nil {
		log.Fatal().Err(err).Msg("reading record schema failed")
	}

	start := time.Now()
	res, err := pipeline.Train(records, columns, c.DBPath, pipeline.Options{
		Holdout:      c.Holdout,
		Seed:         c.Seed,
		LearningRate: c.LearningRate,
		MaxIter:      c.MaxIter,
		Tolerance:    c.Tolerance,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	fmt.Println("\n=== Model Evaluation (Test Set) ===")
	fmt.Print(res.Metrics.Report())

	if err := artifact.Save(res.Artifact, c.ArtifactPath); err != nil {
		log.Fatal().Err(err).Msg("saving artifact failed")
	}
	log.Info().
		Str("path", c.ArtifactPath).
		Int("train_rows", res.TrainRows).
		Int("test_rows", res.TestRows).
		Bool("converged", res.Converged).
		Dur("elapsed", time.Since(start)).
		Msg("artifact saved")

	recordRun(c, res)
}

// recordRun appends the run to the local history. Failing to record is
// not fatal; the artifact is already on disk.
func recordRun(c cfg.Settings, res *pipeline.Result) {
	history, err := runhistory.Open(c.RunHistoryPath)
	if err != nil {
		log.Warn().Err(err).Msg("run history unavailable, skipping")
		return
	}
	defer history.Close()

	err = history.Append(runhistory.Run{
		Timestamp:    res.Artifact.Meta.CreatedAt,
		TrainRows:    res.TrainRows,
		TestRows:     res.TestRows,
		ExcludedRows: res.Excluded,
		PositiveRate: res.Artifact.Meta.PositiveRate,
		Metrics:      res.Metrics,
		Converged:    res.Converged,
		Iterations:   res.Artifact.Model.Iterations,
		ArtifactPath: c.ArtifactPath,
	})
	if err != nil {
		log.Warn().Err(err).Msg("recording run failed")
	}
}
