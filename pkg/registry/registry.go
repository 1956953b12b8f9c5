// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"defi-nlu/internal/common/validation"
)

var ErrInvalidRegistry = errors.New("INVALID_REGISTRY")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Find returns the activity registered for a Zeebe job type.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks that ids and task types are unique and that every
// timeout and schema can actually be used.
func (r *ActivityRegistry) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for i, a := range r.Activities {
		name := a.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		switch {
		case a.ID == "":
			errs = append(errs, fmt.Errorf("activity %s: id is required", name))
		case ids[a.ID]:
			errs = append(errs, fmt.Errorf("activity %s: duplicate id", name))
		}
		ids[a.ID] = true

		switch {
		case a.TaskType == "":
			errs = append(errs, fmt.Errorf("activity %s: taskType is required", name))
		case taskTypes[a.TaskType]:
			errs = append(errs, fmt.Errorf("activity %s: duplicate taskType %q", name, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if !statuses[a.ImplementationStatus] {
			errs = append(errs, fmt.Errorf("activity %s: unknown implementationStatus %q", name, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %s: timeout: %v", name, err))
			}
		}
		if err := compileSchema(a.InputSchema); err != nil {
			errs = append(errs, fmt.Errorf("activity %s: inputSchema: %v", name, err))
		}
		if err := compileSchema(a.OutputSchema); err != nil {
			errs = append(errs, fmt.Errorf("activity %s: outputSchema: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRegistry, errors.Join(errs...))
	}
	return nil
}

func compileSchema(schema map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	_, err = validation.Compile(string(raw))
	return err
}
