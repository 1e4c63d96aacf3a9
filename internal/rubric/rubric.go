// Package rubric defines the scoring rubrics used to evaluate documentation.
// A rubric maps a document type to a weighted set of categories; weights
// always sum to 100 so category scores reproduce the total score.
package rubric

import (
	"fmt"
	"strings"
)

// DocType constants for the built-in rubrics
const (
	DocTypeReadme  = "readme"
	DocTypeGeneric = "generic"
)

// MaxScore is the total achievable score under any rubric
const MaxScore = 100

// Category is a single weighted scoring dimension
type Category struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
	// Hint describes what the category rewards; embedded into the
	// evaluation prompt when present
	Hint string `yaml:"hint,omitempty"`
}

// Spec is a complete scoring rubric for one document type.
// Specs are read-only after construction and shared across evaluations.
type Spec struct {
	DocType    string     `yaml:"doc_type"`
	Categories []Category `yaml:"categories"`
}

// Weights returns the category name to weight mapping
func (s *Spec) Weights() map[string]int {
	weights := make(map[string]int, len(s.Categories))
	for _, c := range s.Categories {
		weights[c.Name] = c.Weight
	}
	return weights
}

// CategoryNames returns category names in rubric order
func (s *Spec) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Validate checks rubric structural invariants
func (s *Spec) Validate() error {
	if s.DocType == "" {
		return fmt.Errorf("rubric error: doc_type is required")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("rubric error: at least one category is required")
	}

	seen := make(map[string]bool, len(s.Categories))
	total := 0
	for i, c := range s.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("rubric error: category %d has no name", i)
		}
		if c.Weight <= 0 {
			return fmt.Errorf("rubric error: category %q has non-positive weight %d", c.Name, c.Weight)
		}
		if seen[c.Name] {
			return fmt.Errorf("rubric error: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		total += c.Weight
	}

	if total != MaxScore {
		return fmt.Errorf("rubric error: category weights sum to %d, want %d", total, MaxScore)
	}
	return nil
}

// PromptSection renders the rubric's category list for embedding in an
// evaluation prompt.
func (s *Spec) PromptSection() string {
	var sb strings.Builder
	for i, c := range s.Categories {
		display := strings.ReplaceAll(c.Name, "_", " ")
		sb.WriteString(fmt.Sprintf("%d. %s (0-%d points)", i+1, titleCase(display), c.Weight))
		if c.Hint != "" {
			sb.WriteString(": " + c.Hint)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SchemaExample renders the JSON skeleton the model is asked to fill in.
func (s *Spec) SchemaExample() string {
	var sb strings.Builder
	sb.WriteString("{\n  \"category_scores\": {\n")
	for i, c := range s.Categories {
		sb.WriteString(fmt.Sprintf("    %q: {\"score\": 0, \"max_score\": %d, \"reason\": \"reason\"}", c.Name, c.Weight))
		if i < len(s.Categories)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  },\n")
	sb.WriteString("  \"total_score\": 0,\n")
	sb.WriteString("  \"max_score\": 100,\n")
	sb.WriteString("  \"grade\": \"Poor/Needs Improvement/Satisfactory/Good/Excellent\",\n")
	sb.WriteString("  \"summary\": \"Brief summary evaluation\",\n")
	sb.WriteString("  \"top_recommendations\": [\"First recommendation\", \"Second recommendation\"]\n")
	sb.WriteString("}")
	return sb.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Registry holds the rubrics known to the process: built-ins plus any
// custom rubrics loaded from YAML files.
type Registry struct {
	specs map[string]*Spec
}

// NewRegistry creates a registry seeded with the built-in rubrics
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]*Spec)}
	r.specs[DocTypeReadme] = readmeSpec()
	r.specs[DocTypeGeneric] = genericSpec()
	return r
}

// Register adds a rubric after validating it. An existing rubric for the
// same doc type is replaced.
func (r *Registry) Register(spec *Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.specs[spec.DocType] = spec
	return nil
}

// ForDocType returns the rubric for docType. Unknown types fall back to the
// generic rubric rather than failing.
func (r *Registry) ForDocType(docType string) *Spec {
	if spec, ok := r.specs[docType]; ok {
		return spec
	}
	return r.specs[DocTypeGeneric]
}

// DocTypes returns the registered document types in unspecified order
func (r *Registry) DocTypes() []string {
	types := make([]string, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	return types
}

func readmeSpec() *Spec {
	return &Spec{
		DocType: DocTypeReadme,
		Categories: []Category{
			{Name: "title_and_description", Weight: 10, Hint: "clear project title, concise description, value proposition"},
			{Name: "structure_and_organization", Weight: 15, Hint: "logical hierarchy of sections, headers and lists, natural flow"},
			{Name: "installation_guide", Weight: 15, Hint: "prerequisites, step-by-step instructions, troubleshooting"},
			{Name: "usage_examples", Weight: 15, Hint: "basic usage, code snippets, common use cases"},
			{Name: "feature_explanation", Weight: 10, Hint: "feature list, benefits, distinctive features highlighted"},
			{Name: "documentation_links", Weight: 10, Hint: "links to detailed docs, API references, wiki resources"},
			{Name: "badges_and_shields", Weight: 5, Hint: "build status, version and other metadata badges"},
			{Name: "license_information", Weight: 5, Hint: "license specified, usage restrictions noted"},
			{Name: "contributing_guidelines", Weight: 5, Hint: "how to contribute, contribution standards"},
			{Name: "conciseness_and_clarity", Weight: 10, Hint: "appropriate length, clear language, jargon explained"},
		},
	}
}

func genericSpec() *Spec {
	return &Spec{
		DocType: DocTypeGeneric,
		Categories: []Category{
			{Name: "content_quality", Weight: 20, Hint: "accurate, relevant, appropriate level of detail"},
			{Name: "structure_and_organization", Weight: 20, Hint: "logical flow, good use of headers and sections"},
			{Name: "clarity_and_readability", Weight: 20, Hint: "clear explanations, appropriate language, jargon explained"},
			{Name: "completeness", Weight: 15, Hint: "covers necessary topics, no significant gaps"},
			{Name: "technical_accuracy", Weight: 15, Hint: "correct and up-to-date technical information"},
			{Name: "formatting_and_presentation", Weight: 10, Hint: "consistent formatting, effective markdown"},
		},
	}
}

// InferDocType returns the document type for a filename when none was
// forced: README.md maps to the readme rubric, everything else is generic.
func InferDocType(filename string) string {
	if strings.EqualFold(filename, "README.md") {
		return DocTypeReadme
	}
	return DocTypeGeneric
}
