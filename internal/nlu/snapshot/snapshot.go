// internal/nlu/snapshot/snapshot.go
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"defi-nlu/internal/common/validation"
	"defi-nlu/internal/nlu/classifier"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/model"
	"defi-nlu/internal/nlu/vectorizer"
)

const SchemaVersion = 1

var (
	ErrUnsupportedVersion = errors.New("SNAPSHOT_UNSUPPORTED_VERSION")
	ErrInvalidSnapshot    = errors.New("SNAPSHOT_INVALID")
)

// Snapshot is the persisted form of a trained model. It lists tables by
// position and never exposes in-memory container layout.
type Snapshot struct {
	SchemaVersion int            `json:"schemaVersion"`
	ID            string         `json:"id"`
	ModelType     string         `json:"modelType"`
	CreatedAt     time.Time      `json:"createdAt"`
	CorpusSize    int            `json:"corpusSize"`
	Vocabulary    []string       `json:"vocabulary"`
	IDF           []float64      `json:"idf"`
	Classes       []ClassWeights `json:"classes"`
}

type ClassWeights struct {
	Intent  string    `json:"intent"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

var schema = validation.MustCompile(`{
	"type": "object",
	"required": ["schemaVersion", "id", "modelType", "createdAt", "vocabulary", "idf", "classes"],
	"properties": {
		"schemaVersion": {"type": "integer", "enum": [1]},
		"id": {"type": "string", "minLength": 1},
		"modelType": {"type": "string", "enum": ["tfidf-logistic-regression-ovr"]},
		"createdAt": {"type": "string", "format": "date-time"},
		"corpusSize": {"type": "integer", "minimum": 0},
		"vocabulary": {"type": "array", "items": {"type": "string", "minLength": 1}, "uniqueItems": true},
		"idf": {"type": "array", "items": {"type": "number", "minimum": 0}},
		"classes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["intent", "weights", "bias"],
				"properties": {
					"intent": {"type": "string", "pattern": "^[A-Z_]+$"},
					"weights": {"type": "array", "items": {"type": "number"}},
					"bias": {"type": "number"}
				}
			}
		}
	}
}`)

// Capture exports a trained model.
func Capture(m *model.Model) Snapshot {
	exported := m.Classifier().Export()
	classes := make([]ClassWeights, len(exported))
	for i, cw := range exported {
		classes[i] = ClassWeights{
			Intent:  cw.Intent.String(),
			Weights: cw.Weights,
			Bias:    cw.Bias,
		}
	}
	return Snapshot{
		SchemaVersion: SchemaVersion,
		ID:            m.ID,
		ModelType:     model.Type,
		CreatedAt:     m.TrainedAt,
		CorpusSize:    m.CorpusSize,
		Vocabulary:    m.Vectorizer().Vocabulary(),
		IDF:           m.Vectorizer().IDF(),
		Classes:       classes,
	}
}

// Restore rebuilds an independent model from a snapshot.
func Restore(s Snapshot) (*model.Model, error) {
	if s.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.SchemaVersion)
	}

	vec, err := vectorizer.FromTables(s.Vocabulary, s.IDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	weights := make([]classifier.ClassWeights, len(s.Classes))
	for i, cw := range s.Classes {
		in, err := intent.Parse(cw.Intent)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		weights[i] = classifier.ClassWeights{Intent: in, Weights: cw.Weights, Bias: cw.Bias}
	}
	clf, err := classifier.Restore(classifier.DefaultOptions(), weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	m, err := model.Assemble(s.ID, s.CreatedAt, s.CorpusSize, vec, clf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return m, nil
}

func Encode(m *model.Model) ([]byte, error) {
	return json.Marshal(Capture(m))
}

// Decode checks the version and schema before rebuilding the model.
func Decode(data []byte) (*model.Model, error) {
	var header struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if header.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.SchemaVersion)
	}

	if result := schema.ValidateBytes(data); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, result.Error())
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return Restore(s)
}
