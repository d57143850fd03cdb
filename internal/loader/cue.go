package loader

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ruleSchema constrains CUE rule manifests before decoding. Authors
// get cue-level errors for shape mistakes (wrong scalar types, unknown
// fields on rules) on top of the document checks shared with YAML.
const ruleSchema = `
#Node: {
	helper?: string
	args?: [...(string | int | bool)]
	and?: [...#Node]
	or?: [...#Node]
	not?: #Node
}

game: string
rules: [...{
	name: string
	rule: #Node
}]
`

// LoadCUE loads a rule document from a CUE manifest. The manifest is
// unified with the document schema first, so type-level mistakes
// surface as CUE errors with positions.
func LoadCUE(path string, mode LoadMode) (*RuleSet, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules file not found: %s", path)}}
		}
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: err.Error()}}
	}
	return ParseCUE(data, path, mode)
}

// ParseCUE parses a CUE rule manifest from bytes.
func ParseCUE(data []byte, filename string, mode LoadMode) (*RuleSet, []error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(ruleSchema)
	if err := schema.Err(); err != nil {
		// The schema is a compile-time constant; failing to compile it
		// is a defect in this package.
		panic(fmt.Sprintf("loader: rule schema does not compile: %v", err))
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: fmt.Sprintf("cue: %v", err)}}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: fmt.Sprintf("cue: %v", err)}}
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeUnreadable, Message: fmt.Sprintf("cue decode: %v", err)}}
	}
	return buildRuleSet(&doc, mode)
}
