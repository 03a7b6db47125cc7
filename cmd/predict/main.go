// Command predict loads the persisted artifact, scores the current
// employee records, and prints a sample of the predictions.
package main

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hr-attrition/internal/artifact"
	"hr-attrition/internal/cfg"
	"hr-attrition/internal/predict"
	"hr-attrition/internal/store"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	bundle, err := artifact.Load(c.ArtifactPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading artifact failed; train a model first")
	}
	log.Info().
		Str("path", c.ArtifactPath).
		Time("created_at", bundle.Meta.CreatedAt).
		Int("features", len(bundle.FeatureSet)).
		Msg("artifact loaded")

	db, err := store.Open(c.DBPath, c.EmployeesTable)
	if err != nil {
		log.Fatal().Err(err).Msg("record store unavailable")
	}
	defer db.Close()

	records, err := db.Snapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("reading employee records failed")
	}
	if len(records) == 0 {
		log.Fatal().Str("table", c.EmployeesTable).Msg("no records to score")
	}

	preds, err := predict.New(bundle).Score(records)
	if err != nil {
		var sme *predict.SchemaMismatchError
		if errors.As(err, &sme) {
			log.Fatal().Strs("missing_columns", sme.Missing).Msg("batch schema does not satisfy the artifact")
		}
		log.Fatal().Err(err).Msg("scoring failed")
	}

	positives := 0
	for _, p := range preds {
		positives += p.Label
	}
	log.Info().
		Int("records", len(preds)).
		Int("predicted_leavers", positives).
		Msg("batch scored")

	fmt.Println("\nSample Predictions:")
	fmt.Printf("%-6s %-26s %-26s %12s  %10s %12s\n",
		"Age", "Department", "JobRole", "Income", "Attrition", "Probability")
	n := c.SampleSize
	if n > len(preds) {
		n = len(preds)
	}
	for i := 0; i < n; i++ {
		r := records[i]
		fmt.Printf("%-6s %-26s %-26s %12s  %10d %12.4f\n",
			r["Age"], r["Department"], r["JobRole"], r["MonthlyIncome"],
			preds[i].Label, preds[i].Probability)
	}
}
