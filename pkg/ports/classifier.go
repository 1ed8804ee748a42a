package ports

// Classifier is a trained model consuming schema-ordered feature rows.
type Classifier interface {
	// Columns returns the feature names the model was trained on, in order.
	Columns() []string

	// Predict returns one 0/1 label per input row.
	Predict(rows [][]float64) ([]int, error)
}
