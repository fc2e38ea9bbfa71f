package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one schema violation.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every violation found in a document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks a decoded YAML document against the embedded schema.
// Returns nil when the document is valid.
func Validate(doc any) ValidationErrors {
	if doc == nil {
		return ValidationErrors{{Message: "config is empty"}}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return ValidationErrors{{Message: fmt.Sprintf("compile schema: %v", err)}}
	}

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return fromCUE(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fromCUE(err)
	}
	return nil
}

func fromCUE(err error) ValidationErrors {
	var out ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		out = append(out, ValidationError{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(out) == 0 {
		out = ValidationErrors{{Message: err.Error()}}
	}
	return out
}
