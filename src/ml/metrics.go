package ml

import "fmt"

// ScoreFunc scores predictions against true labels; higher is better.
type ScoreFunc func(yTrue, yPred []float64) float64

// Accuracy is the fraction of exactly matching labels.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// F1Micro aggregates true/false positives and false negatives over all
// classes before computing F1. For single-label data this equals accuracy,
// but the general form keeps multiclass labels honest.
func F1Micro(yTrue, yPred []float64) float64 {
	var tp, fp, fn float64
	for _, class := range classesOf(yTrue, yPred) {
		ctp, cfp, cfn := classCounts(yTrue, yPred, class)
		tp += ctp
		fp += cfp
		fn += cfn
	}
	if 2*tp+fp+fn == 0 {
		return 0
	}
	return 2 * tp / (2*tp + fp + fn)
}

// F1Macro averages per-class F1 scores with equal class weight.
func F1Macro(yTrue, yPred []float64) float64 {
	classes := classesOf(yTrue, yPred)
	if len(classes) == 0 {
		return 0
	}
	var sum float64
	for _, class := range classes {
		tp, fp, fn := classCounts(yTrue, yPred, class)
		if 2*tp+fp+fn > 0 {
			sum += 2 * tp / (2*tp + fp + fn)
		}
	}
	return sum / float64(len(classes))
}

func classesOf(yTrue, yPred []float64) []float64 {
	seen := make(map[float64]bool)
	var classes []float64
	for _, ys := range [][]float64{yTrue, yPred} {
		for _, y := range ys {
			if !seen[y] {
				seen[y] = true
				classes = append(classes, y)
			}
		}
	}
	return classes
}

func classCounts(yTrue, yPred []float64, class float64) (tp, fp, fn float64) {
	for i := range yTrue {
		switch {
		case yPred[i] == class && yTrue[i] == class:
			tp++
		case yPred[i] == class:
			fp++
		case yTrue[i] == class:
			fn++
		}
	}
	return tp, fp, fn
}

// ScorerByName resolves a scoring metric name.
func ScorerByName(name string) (ScoreFunc, error) {
	switch name {
	case "f1_micro", "":
		return F1Micro, nil
	case "f1_macro":
		return F1Macro, nil
	case "accuracy":
		return Accuracy, nil
	default:
		return nil, fmt.Errorf("unknown scoring metric: %q", name)
	}
}
