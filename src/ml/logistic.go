package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Estimator is a trainable model with sklearn-shaped hyperparameter
// access, so the grid search can clone and reconfigure it per candidate.
type Estimator interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
	Params() map[string]float64
	SetParams(params map[string]float64) error
	Clone() Estimator
}

// LogisticRegression is a binary classifier trained with full-batch
// gradient descent and optional L2 regularization. Labels are 0/1.
type LogisticRegression struct {
	LearningRate float64
	L2           float64
	Epochs       int

	weights []float64
	bias    float64
	fitted  bool
}

// NewLogisticRegression returns an estimator with the default
// hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Epochs:       200,
	}
}

func (lr *LogisticRegression) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("X has %d rows but y has %d labels", rows, len(y))
	}
	if rows == 0 {
		return errors.New("cannot fit on an empty dataset")
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("label at row %d is %v, want 0 or 1", i, v)
		}
	}

	lr.weights = make([]float64, cols)
	lr.bias = 0

	grad := make([]float64, cols)
	for epoch := 0; epoch < lr.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i := 0; i < rows; i++ {
			row := X.RawRowView(i)
			p := sigmoid(floats.Dot(lr.weights, row) + lr.bias)
			diff := p - y[i]
			for j, x := range row {
				grad[j] += diff * x
			}
			gradBias += diff
		}

		scale := lr.LearningRate / float64(rows)
		for j := range lr.weights {
			lr.weights[j] -= scale * (grad[j] + lr.L2*lr.weights[j])
		}
		lr.bias -= scale * gradBias
	}

	lr.fitted = true
	return nil
}

func (lr *LogisticRegression) Predict(X *mat.Dense) ([]float64, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	for i, p := range probs {
		if p >= 0.5 {
			probs[i] = 1
		} else {
			probs[i] = 0
		}
	}
	return probs, nil
}

// PredictProba returns the positive-class probability per row.
func (lr *LogisticRegression) PredictProba(X *mat.Dense) ([]float64, error) {
	if !lr.fitted {
		return nil, errors.New("model not fitted")
	}
	rows, cols := X.Dims()
	if cols != len(lr.weights) {
		return nil, fmt.Errorf("X has %d features, model was fitted on %d", cols, len(lr.weights))
	}

	probs := make([]float64, rows)
	for i := 0; i < rows; i++ {
		probs[i] = sigmoid(floats.Dot(lr.weights, X.RawRowView(i)) + lr.bias)
	}
	return probs, nil
}

func (lr *LogisticRegression) Params() map[string]float64 {
	return map[string]float64{
		"learning_rate": lr.LearningRate,
		"l2":            lr.L2,
		"epochs":        float64(lr.Epochs),
	}
}

func (lr *LogisticRegression) SetParams(params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "learning_rate":
			lr.LearningRate = v
		case "l2":
			lr.L2 = v
		case "epochs":
			lr.Epochs = int(v)
		default:
			return fmt.Errorf("unknown hyperparameter: %q", name)
		}
	}
	return nil
}

// Clone copies the hyperparameters but not the fitted state.
func (lr *LogisticRegression) Clone() Estimator {
	return &LogisticRegression{
		LearningRate: lr.LearningRate,
		L2:           lr.L2,
		Epochs:       lr.Epochs,
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
