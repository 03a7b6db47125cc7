// Package eval computes classification quality metrics for the holdout
// partition.
package eval

import (
	"fmt"
	"sort"
	"strings"
)

// ClassMetrics holds per-class precision, recall and F1. When a class has
// no support or no predictions the undefined ratios degrade to zero.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Result is the evaluation of a fitted classifier on holdout data.
type Result struct {
	Classes  [2]ClassMetrics `json:"classes"`
	Accuracy float64         `json:"accuracy"`
	// AUC is meaningful only when AUCAvailable is true. A holdout with a
	// single label value has no defined ROC curve; that is reported as
	// unavailable, never raised.
	AUC          float64 `json:"auc"`
	AUCAvailable bool    `json:"auc_available"`
}

// Evaluate computes metrics from true labels, hard predictions and
// positive-class probabilities, all index-aligned.
func Evaluate(labels, predicted []int, proba []float64) Result {
	var r Result
	if len(labels) == 0 {
		return r
	}

	var tp, fp, tn, fn int
	for i, y := range labels {
		switch {
		case predicted[i] == 1 && y == 1:
			tp++
		case predicted[i] == 1 && y == 0:
			fp++
		case predicted[i] == 0 && y == 0:
			tn++
		default:
			fn++
		}
	}

	r.Classes[1] = classMetrics(tp, fp, fn, tp+fn)
	r.Classes[0] = classMetrics(tn, fn, fp, tn+fp)
	r.Accuracy = float64(tp+tn) / float64(len(labels))
	r.AUC, r.AUCAvailable = rocAUC(labels, proba)
	return r
}

func classMetrics(tp, fp, fn, support int) ClassMetrics {
	m := ClassMetrics{Support: support}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// rocAUC computes the area under the ROC curve as the tie-aware
// Mann-Whitney rank statistic over the positive class.
func rocAUC(labels []int, proba []float64) (float64, bool) {
	pos, neg := 0, 0
	for _, y := range labels {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, false
	}

	order := make([]int, len(proba))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return proba[order[a]] < proba[order[b]] })

	// Average ranks across ties.
	ranks := make([]float64, len(proba))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && proba[order[j]] == proba[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	sumPos := 0.0
	for i, y := range labels {
		if y == 1 {
			sumPos += ranks[i]
		}
	}
	auc := (sumPos - float64(pos)*float64(pos+1)/2) / (float64(pos) * float64(neg))
	return auc, true
}

// Report renders the result as a classification-report-style text block
// for the training entry point's stdout.
func (r Result) Report() string {
	var b strings.Builder
	b.WriteString("              precision    recall  f1-score   support\n\n")
	for _, class := range []int{0, 1} {
		m := r.Classes[class]
		fmt.Fprintf(&b, "%12d %10.2f %9.2f %9.2f %9d\n", class, m.Precision, m.Recall, m.F1, m.Support)
	}
	total := r.Classes[0].Support + r.Classes[1].Support
	fmt.Fprintf(&b, "\n    accuracy %30.2f %9d\n", r.Accuracy, total)
	if r.AUCAvailable {
		fmt.Fprintf(&b, "\nROC-AUC: %.4f\n", r.AUC)
	} else {
		b.WriteString("\nROC-AUC: unavailable (holdout contains a single class)\n")
	}
	return b.String()
}
