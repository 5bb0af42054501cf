// attack.go
package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one stage of an attack simulation. Its position in Attack.Steps is
// the progress marker.
type Step struct {
	ID            string `yaml:"id" json:"id"`
	Title         string `yaml:"title" json:"title"`
	Description   string `yaml:"description" json:"description"`
	Visualization string `yaml:"visualization,omitempty" json:"visualization,omitempty"`
}

// Defense describes a mitigation strategy for an attack.
type Defense struct {
	Strategy      string `yaml:"strategy" json:"strategy"`
	Description   string `yaml:"description" json:"description"`
	Effectiveness string `yaml:"effectiveness" json:"effectiveness"`
}

// Question is a single multiple choice quiz question.
type Question struct {
	Question    string   `yaml:"question" json:"question"`
	Options     []string `yaml:"options" json:"options"`
	Correct     int      `yaml:"correct" json:"correct"`
	Explanation string   `yaml:"explanation" json:"explanation"`
}

// Quiz holds the ordered questions attached to an attack.
type Quiz struct {
	Questions []Question `yaml:"questions" json:"questions"`
}

// Attack is a read-only simulation record served from the catalog.
type Attack struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Category      string    `yaml:"category" json:"category"`
	Difficulty    string    `yaml:"difficulty" json:"difficulty"`
	EstimatedTime int       `yaml:"estimated_time" json:"estimated_time"`
	Description   string    `yaml:"description" json:"description"`
	Steps         []Step    `yaml:"steps" json:"steps"`
	Defenses      []Defense `yaml:"defenses" json:"defenses"`
	Quiz          *Quiz     `yaml:"quiz,omitempty" json:"quiz,omitempty"`
}

// LastStep returns the index of the final step, or -1 when there are none.
func (a *Attack) LastStep() int {
	return len(a.Steps) - 1
}

// HasStep reports whether step is a valid index into Steps.
func (a *Attack) HasStep(step int) bool {
	return step >= 0 && step < len(a.Steps)
}

// QuestionCount returns the number of quiz questions, 0 without a quiz.
func (a *Attack) QuestionCount() int {
	if a.Quiz == nil {
		return 0
	}
	return len(a.Quiz.Questions)
}

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}
var effectiveness = map[string]bool{"High": true, "Medium": true, "Low": true}

// Catalog is the full set of attacks known to the backend, in file order.
type Catalog struct {
	Attacks []Attack `yaml:"attacks"`

	byID map[string]int
}

// LoadCatalog reads and validates the attacks YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document and fills derived fields.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}

	catalog.byID = make(map[string]int, len(catalog.Attacks))
	for i := range catalog.Attacks {
		a := &catalog.Attacks[i]
		if err := validateAttack(a); err != nil {
			return nil, err
		}
		if _, dup := catalog.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate attack id %q", a.ID)
		}
		catalog.byID[a.ID] = i

		hint := VisualizationFor(a.Category)
		for j := range a.Steps {
			if a.Steps[j].Visualization == "" {
				a.Steps[j].Visualization = hint
			}
		}
	}
	return &catalog, nil
}

func validateAttack(a *Attack) error {
	if a.ID == "" {
		return fmt.Errorf("attack %q has no id", a.Name)
	}
	if !difficulties[a.Difficulty] {
		return fmt.Errorf("attack %s: invalid difficulty %q", a.ID, a.Difficulty)
	}
	for _, d := range a.Defenses {
		if !effectiveness[d.Effectiveness] {
			return fmt.Errorf("attack %s: invalid defense effectiveness %q", a.ID, d.Effectiveness)
		}
	}
	if a.Quiz != nil {
		for i, q := range a.Quiz.Questions {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return fmt.Errorf("attack %s: question %d correct index %d out of range", a.ID, i, q.Correct)
			}
		}
	}
	if len(a.Steps) == 0 {
		return fmt.Errorf("attack %s has no steps", a.ID)
	}
	return nil
}

// Get returns the attack with the given id.
func (c *Catalog) Get(id string) (*Attack, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.Attacks[i], true
}

// Len returns the number of attacks in the catalog.
func (c *Catalog) Len() int {
	return len(c.Attacks)
}

// VisualizationFor maps a category name to the step visualization hint.
func VisualizationFor(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "network"):
		return "network"
	case strings.Contains(c, "malware"):
		return "malware"
	case strings.Contains(c, "web"):
		return "web"
	default:
		return "generic"
	}
}
