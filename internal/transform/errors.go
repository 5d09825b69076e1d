package transform

import (
	"errors"
	"fmt"

	"github.com/dkocen/voicemail-for-amazon-connect/internal/template"
)

// Error kinds reported by Transform. Use errors.Is to classify a failure.
var (
	// ErrRead means the input template could not be opened or parsed.
	// A missing file also matches fs.ErrNotExist.
	ErrRead = errors.New("read template")

	// ErrMissingKey means a section, resource or property the rewrite
	// depends on is absent.
	ErrMissingKey = errors.New("missing key")

	// ErrMissingSibling means a framework log group has no matching
	// function, or the function does not depend on it.
	ErrMissingSibling = errors.New("missing sibling")

	// ErrWrite means the output template could not be written.
	ErrWrite = errors.New("write template")
)

// KeyError records which lookup failed while rewriting a template.
type KeyError struct {
	// Resource is the logical ID being rewritten, empty for
	// template sections.
	Resource string
	// Path is the template path that could not be resolved.
	Path string
	// Kind is ErrMissingKey or ErrMissingSibling.
	Kind error
	// Err is the underlying lookup failure, if any.
	Err error
}

func (e *KeyError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Path)
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (rewriting %s)", msg, e.Resource)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *KeyError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func isNotFound(err error) bool {
	return errors.Is(err, template.ErrNotFound)
}
