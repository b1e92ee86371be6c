package ml

import (
	"math"
	"testing"
)

func TestAccuracy(t *testing.T) {
	yTrue := []float64{1, 0, 1, 1}
	yPred := []float64{1, 0, 0, 1}
	if got := Accuracy(yTrue, yPred); got != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
}

func TestF1MicroEqualsAccuracyForSingleLabel(t *testing.T) {
	yTrue := []float64{1, 0, 1, 1, 0, 0}
	yPred := []float64{1, 0, 0, 1, 1, 0}
	if micro, acc := F1Micro(yTrue, yPred), Accuracy(yTrue, yPred); math.Abs(micro-acc) > 1e-12 {
		t.Errorf("F1Micro = %v, Accuracy = %v; they must agree on single-label data", micro, acc)
	}
}

func TestF1Macro(t *testing.T) {
	// Class 1: tp=1 fp=1 fn=1 -> f1 = 0.5. Class 0: tp=1 fp=1 fn=1 -> 0.5.
	yTrue := []float64{1, 1, 0, 0}
	yPred := []float64{1, 0, 1, 0}
	if got := F1Macro(yTrue, yPred); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("F1Macro = %v, want 0.5", got)
	}
}

func TestScorerByName(t *testing.T) {
	for _, name := range []string{"", "f1_micro", "f1_macro", "accuracy"} {
		if _, err := ScorerByName(name); err != nil {
			t.Errorf("ScorerByName(%q): %v", name, err)
		}
	}
	if _, err := ScorerByName("rmse"); err == nil {
		t.Error("expected an error for an unknown metric")
	}
}
