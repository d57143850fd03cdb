package validate

import "fmt"

// Diagnostic codes (R100-R199)
const (
	// CodeUnknownHelper - a call references a name absent from the registry.
	CodeUnknownHelper = "R100"
	// CodeArityMismatch - argument count or kind does not match the signature.
	CodeArityMismatch = "R101"
	// CodeEmptyComposite - an And/Or node has zero children.
	CodeEmptyComposite = "R102"
	// CodeMalformedNode - a nil node or nil argument inside the tree.
	CodeMalformedNode = "R103"
)

// Diagnostic reports one authoring problem found during validation.
//
// Diagnostics are structured data for an external reporting layer (CLI
// output, build-time lint) to render - validation itself never prints.
// Path locates the offending node: the root contributes its kind label
// and each descent appends "/children[i]" ("/child" for Not), e.g.
// "And/children[1]".
type Diagnostic struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String renders a diagnostic in "[R100] And/children[1]: message" form.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Path, d.Message)
}
