package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML loads a rule document from a YAML file.
// If mode is LoadModeFailFast, returns on the first error.
// If mode is LoadModeCollectAll, collects all document-shape errors.
func LoadYAML(path string, mode LoadMode) (*RuleSet, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules file not found: %s", path)}}
		}
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: err.Error()}}
	}
	return ParseYAML(data, mode)
}

// ParseYAML parses a YAML rule document from bytes.
func ParseYAML(data []byte, mode LoadMode) (*RuleSet, []error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: fmt.Sprintf("yaml: %v", err)}}
	}
	return buildRuleSet(&doc, mode)
}
