// Package serialize turns Go values into JSON fragments for template
// edits and writes finished templates to disk.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"
)

// indentOptions mirrors the layout CloudFormation tooling emits: two-space
// indentation, one array element per line, keys left in document order.
var indentOptions = &pretty.Options{
	Width:    0,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Raw marshals v to compact JSON suitable for splicing into a template.
// Unlike json.Marshal it leaves <, > and & unescaped, since policy
// conditions and Fn::Sub strings are read by CloudFormation, not a browser.
func Raw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encode terminates every value with a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Indent reformats a JSON document with two-space indentation.
// Object keys keep the order they have in raw.
func Indent(raw []byte) []byte {
	return pretty.PrettyOptions(raw, indentOptions)
}

// WriteFile writes data to path. The content is staged in a temporary
// file in the same directory and renamed into place, so path is either
// left untouched or holds the complete document.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
