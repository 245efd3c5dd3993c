package artifact

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"jobmatch-backend/internal/ensemble"
)

func init() {
	// Classifiers are stored behind the interface type, so the concrete
	// types must be registered for gob.
	gob.Register(&ensemble.RandomForest{})
	gob.Register(&ensemble.LinearSVM{})
	gob.Register(&ensemble.LogisticRegression{})
	gob.Register(&ensemble.KNN{})
	gob.Register(&ensemble.GradientBoosting{})
	gob.Register(&ensemble.Constant{})
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}
