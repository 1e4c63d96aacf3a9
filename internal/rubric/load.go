package rubric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a custom rubric from a YAML file and validates it.
// The file holds a single Spec:
//
//	doc_type: runbook
//	categories:
//	  - name: incident_steps
//	    weight: 40
//	    hint: actionable step-by-step incident response
//	  - name: escalation_paths
//	    weight: 30
//	  - name: freshness
//	    weight: 30
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file %s: %w", path, err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse rubric YAML %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric %s: %w", path, err)
	}

	return &spec, nil
}
