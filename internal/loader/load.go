package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Load dispatches on file extension: .yaml/.yml to the YAML front-end,
// .cue to the CUE front-end.
func Load(path string, mode LoadMode) (*RuleSet, []error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, mode)
	case ".cue":
		return LoadCUE(path, mode)
	default:
		return nil, []error{&LoadError{
			Code:    ErrCodeUnreadable,
			Message: fmt.Sprintf("unsupported rules file extension %q (want .yaml, .yml, or .cue)", filepath.Ext(path)),
		}}
	}
}
