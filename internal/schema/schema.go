// Package schema declares the feature columns used by the attrition model.
// Column typing is declared here once rather than inferred from data, so a
// batch with odd values in a column cannot silently flip its treatment.
package schema

// FeatureKind tells the preprocessor how to encode a column.
type FeatureKind int

const (
	Numeric FeatureKind = iota
	Categorical
)

func (k FeatureKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Feature is a single candidate model input.
type Feature struct {
	Name string      `json:"name"`
	Kind FeatureKind `json:"kind"`
}

// FeatureSet is an ordered list of resolved features. Order is fixed at
// resolve time and must be identical at fit and inference.
type FeatureSet []Feature

// LabelColumn holds the raw attrition flag ("Yes"/"No").
const LabelColumn = "Attrition"

// Candidates is the fixed candidate feature list for the employees table.
// Columns absent from a given store are dropped by Resolve, not synthesized.
func Candidates() FeatureSet {
	return FeatureSet{
		{Name: "Age", Kind: Numeric},
		{Name: "BusinessTravel", Kind: Categorical},
		{Name: "Department", Kind: Categorical},
		{Name: "DistanceFromHome", Kind: Numeric},
		{Name: "Education", Kind: Numeric},
		{Name: "EducationField", Kind: Categorical},
		{Name: "EnvironmentSatisfaction", Kind: Numeric},
		{Name: "Gender", Kind: Categorical},
		{Name: "JobInvolvement", Kind: Numeric},
		{Name: "JobLevel", Kind: Numeric},
		{Name: "JobRole", Kind: Categorical},
		{Name: "JobSatisfaction", Kind: Numeric},
		{Name: "MaritalStatus", Kind: Categorical},
		{Name: "MonthlyIncome", Kind: Numeric},
		{Name: "NumCompaniesWorked", Kind: Numeric},
		{Name: "OverTime", Kind: Categorical},
		{Name: "PercentSalaryHike", Kind: Numeric},
		{Name: "PerformanceRating", Kind: Numeric},
		{Name: "RelationshipSatisfaction", Kind: Numeric},
		{Name: "TotalWorkingYears", Kind: Numeric},
		{Name: "TrainingTimesLastYear", Kind: Numeric},
		{Name: "WorkLifeBalance", Kind: Numeric},
		{Name: "YearsAtCompany", Kind: Numeric},
		{Name: "YearsInCurrentRole", Kind: Numeric},
		{Name: "YearsSinceLastPromotion", Kind: Numeric},
		{Name: "YearsWithCurrManager", Kind: Numeric},
	}
}

// Resolve intersects the candidate list with the columns actually present,
// preserving candidate order. Pure; absent columns are silently dropped.
func Resolve(candidates FeatureSet, available []string) FeatureSet {
	present := make(map[string]struct{}, len(available))
	for _, c := range available {
		present[c] = struct{}{}
	}

	out := make(FeatureSet, 0, len(candidates))
	for _, f := range candidates {
		if _, ok := present[f.Name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the column names in set order.
func (fs FeatureSet) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Numeric returns the numeric features in set order.
func (fs FeatureSet) Numeric() FeatureSet {
	return fs.filter(Numeric)
}

// Categorical returns the categorical features in set order.
func (fs FeatureSet) Categorical() FeatureSet {
	return fs.filter(Categorical)
}

func (fs FeatureSet) filter(kind FeatureKind) FeatureSet {
	var out FeatureSet
	for _, f := range fs {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
