// Package artifact persists the trained bundle: the fitted transform, the
// fitted classifier and the resolved feature list. Loading a saved
// artifact reproduces inference exactly as performed at training time.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hr-attrition/internal/model"
	"hr-attrition/internal/preprocess"
	"hr-attrition/internal/schema"
)

// Meta describes the training run that produced the bundle.
type Meta struct {
	CreatedAt    time.Time `json:"created_at"`
	TrainRows    int       `json:"train_rows"`
	PositiveRate float64   `json:"positive_rate"`
}

// Artifact is the unit of persistence. It is never partially updated: Save
// replaces the target wholesale or leaves the previous version in place.
type Artifact struct {
	FeatureSet schema.FeatureSet           `json:"feature_set"`
	Transform  *preprocess.FittedTransform `json:"transform"`
	Model      *model.LogisticRegression   `json:"model"`
	Meta       Meta                        `json:"meta"`
}

// Validate checks internal consistency: the transform must describe the
// same feature set the artifact records, and the classifier's weight
// vector must match the transform's output width.
func (a *Artifact) Validate() error {
	if len(a.FeatureSet) == 0 {
		return fmt.Errorf("artifact has an empty feature set")
	}
	if a.Transform == nil || a.Model == nil {
		return fmt.Errorf("artifact is missing its transform or model")
	}
	if len(a.Transform.Features) != len(a.FeatureSet) {
		return fmt.Errorf("transform covers %d features, artifact records %d", len(a.Transform.Features), len(a.FeatureSet))
	}
	for i, f := range a.FeatureSet {
		if a.Transform.Features[i] != f {
			return fmt.Errorf("transform feature %d is %s, artifact records %s", i, a.Transform.Features[i].Name, f.Name)
		}
	}
	if w := a.Transform.Width(); w != len(a.Model.Weights) {
		return fmt.Errorf("transform width %d does not match %d model weights", w, len(a.Model.Weights))
	}
	return nil
}

// Save writes the artifact atomically: the bundle is encoded to a temp
// file in the target directory, synced, then renamed over the target. A
// concurrent loader sees either the old artifact or the new one, never a
// half-written file.
func Save(a *Artifact, path string) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("swap artifact into %s: %w", path, err)
	}
	return nil
}

// Load reads and validates an artifact from disk.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	var a Artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s failed validation: %w", path, err)
	}
	return &a, nil
}
