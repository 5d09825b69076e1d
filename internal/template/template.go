// Package template provides an order-preserving view of a CloudFormation
// JSON template.
//
// A Document keeps the template as raw JSON and edits it in place, so keys
// that are not touched keep their position and formatting-independent
// content, and keys that are added land at the end of their object.
// Paths are given as a sequence of object keys:
//
//	doc.Get("Resources", "MyFunction", "Properties", "Code", "S3Key")
package template

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dkocen/voicemail-for-amazon-connect/internal/serialize"
)

var (
	// ErrNotFound is returned when a path does not resolve to a value.
	ErrNotFound = errors.New("path not found")

	// ErrInvalidJSON is returned when a template is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON template")
)

// Document is a mutable JSON template.
type Document struct {
	raw    []byte
	source string
}

// Load reads and parses the template at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse wraps template content. The source name is only used in messages.
func Parse(data []byte, source string) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", source, ErrInvalidJSON)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%s: top level is not an object: %w", source, ErrInvalidJSON)
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw, source: source}, nil
}

// Source returns the name the document was parsed from.
func (d *Document) Source() string {
	return d.source
}

// Bytes returns the current JSON content.
func (d *Document) Bytes() []byte {
	return d.raw
}

// Get returns the value at the given path.
// With no keys it returns the whole document.
func (d *Document) Get(keys ...string) gjson.Result {
	if len(keys) == 0 {
		return gjson.ParseBytes(d.raw)
	}
	return gjson.GetBytes(d.raw, Path(keys...))
}

// Has reports whether the path resolves to a value, including null.
func (d *Document) Has(keys ...string) bool {
	return d.Get(keys...).Exists()
}

// String returns the string at the given path.
func (d *Document) String(keys ...string) (string, error) {
	res := d.Get(keys...)
	if !res.Exists() {
		return "", fmt.Errorf("%s: %w", Path(keys...), ErrNotFound)
	}
	if res.Type != gjson.String {
		return "", fmt.Errorf("%s: expected string, got %s", Path(keys...), res.Type)
	}
	return res.String(), nil
}

// Keys returns the keys of the object at the given path in document
// order. The result is a copy; editing the document does not change it.
func (d *Document) Keys(keys ...string) []string {
	obj := d.Get(keys...)
	if !obj.IsObject() {
		return nil
	}
	var out []string
	obj.ForEach(func(key, _ gjson.Result) bool {
		out = append(out, key.String())
		return true
	})
	return out
}

// Set replaces the value at the given path with v marshaled to JSON.
// Missing parent objects are created; new keys are appended.
func (d *Document) Set(v any, keys ...string) error {
	raw, err := serialize.Raw(v)
	if err != nil {
		return fmt.Errorf("%s: %w", Path(keys...), err)
	}
	return d.SetRaw(raw, keys...)
}

// SetRaw replaces the value at the given path with a JSON fragment.
func (d *Document) SetRaw(raw []byte, keys ...string) error {
	if len(keys) == 0 {
		return errors.New("set: empty path")
	}
	out, err := sjson.SetRawBytes(d.raw, Path(keys...), raw)
	if err != nil {
		return fmt.Errorf("%s: %w", Path(keys...), err)
	}
	d.raw = out
	return nil
}

// Delete removes the value at the given path. It returns ErrNotFound if
// nothing is there.
func (d *Document) Delete(keys ...string) error {
	if !d.Has(keys...) {
		return fmt.Errorf("%s: %w", Path(keys...), ErrNotFound)
	}
	out, err := sjson.DeleteBytes(d.raw, Path(keys...))
	if err != nil {
		return fmt.Errorf("%s: %w", Path(keys...), err)
	}
	d.raw = out
	return nil
}

// RemoveString deletes the first element equal to value from the array at
// the given path. It returns ErrNotFound if the path is not an array or
// the value is not in it.
func (d *Document) RemoveString(value string, keys ...string) error {
	arr := d.Get(keys...)
	if !arr.IsArray() {
		return fmt.Errorf("%s: array %w", Path(keys...), ErrNotFound)
	}
	idx := -1
	for i, elem := range arr.Array() {
		if elem.Type == gjson.String && elem.Str == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%s: element %q %w", Path(keys...), value, ErrNotFound)
	}
	out, err := sjson.DeleteBytes(d.raw, Path(keys...)+"."+strconv.Itoa(idx))
	if err != nil {
		return fmt.Errorf("%s: %w", Path(keys...), err)
	}
	d.raw = out
	return nil
}

// Path joins object keys into a gjson/sjson path, escaping characters
// that the path syntax would otherwise interpret.
func Path(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = escapeKey(k)
	}
	return strings.Join(escaped, ".")
}

func escapeKey(key string) string {
	if !strings.ContainsAny(key, `\.*?|#@!:`) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!:`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
