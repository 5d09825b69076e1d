// Package transform rewrites a Serverless Framework CloudFormation
// template into the template shipped with the voicemail stack.
//
// The rewrite drops the framework's per-function log groups and deployment
// bucket, lets CloudFormation name functions and roles, points every
// function at the pipeline's artifact keys and adds the cfn_nag metadata
// the stack is scanned with.
package transform

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	voicemail "github.com/dkocen/voicemail-for-amazon-connect"
	"github.com/dkocen/voicemail-for-amazon-connect/internal/serialize"
	"github.com/dkocen/voicemail-for-amazon-connect/internal/template"
	"github.com/dkocen/voicemail-for-amazon-connect/intrinsics"
)

const (
	resourcesSection  = "Resources"
	parametersSection = "Parameters"
)

// Options configures a template rewrite.
type Options struct {
	// TemplatePath is the framework-generated template to read.
	TemplatePath string
	// SavePath is where the rewritten template is written.
	SavePath string
	// ZipKey is the S3 key of the zip artifact for Node functions.
	ZipKey string
	// JarKey is the S3 key of the jar artifact for the recording processor.
	JarKey string
	// Log receives one line per function whose FunctionName is dropped.
	// Nil discards them.
	Log io.Writer
}

// Transform reads opts.TemplatePath, rewrites it and writes the result to
// opts.SavePath. Nothing is written unless the whole rewrite succeeds.
func Transform(opts Options) (*voicemail.TransformResult, error) {
	doc, err := template.Load(opts.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	result, err := Rewrite(doc, opts)
	if err != nil {
		return nil, err
	}

	if err := serialize.WriteFile(opts.SavePath, serialize.Indent(doc.Bytes()), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return result, nil
}

// Rewrite applies every rewrite rule to doc in place.
// Only the artifact keys and Log are read from opts.
func Rewrite(doc *template.Document, opts Options) (*voicemail.TransformResult, error) {
	log := opts.Log
	if log == nil {
		log = io.Discard
	}
	r := &rewriter{
		doc:    doc,
		zipKey: opts.ZipKey,
		jarKey: opts.JarKey,
		log:    log,
		result: &voicemail.TransformResult{
			RenamedFunctions: make(map[string]string),
			Suppressed:       make(map[string][]string),
		},
	}
	if err := r.run(); err != nil {
		return nil, err
	}
	return r.result, nil
}

type rewriter struct {
	doc    *template.Document
	zipKey string
	jarKey string
	log    io.Writer
	result *voicemail.TransformResult
}

func (r *rewriter) run() error {
	for _, section := range []string{resourcesSection, parametersSection} {
		if !r.doc.Get(section).IsObject() {
			return &KeyError{Path: section, Kind: ErrMissingKey}
		}
	}

	// Snapshot the logical IDs; the loops below add and remove resources.
	ids := r.doc.Keys(resourcesSection)

	// Log groups go first so function hardening sees the final
	// DependsOn and FunctionName whatever order the template lists them in.
	for _, id := range ids {
		if isFunctionLogGroup(id) {
			if err := r.stripLogGroup(id); err != nil {
				return err
			}
		}
	}

	for _, id := range ids {
		if !r.doc.Has(resourcesSection, id) {
			continue
		}
		if err := r.rewriteResource(id); err != nil {
			return err
		}
	}

	if err := r.doc.Set(recordingsReadPolicy(), resourcesSection, readPolicyID); err != nil {
		return err
	}
	r.result.AddedResources = append(r.result.AddedResources, readPolicyID)

	for _, id := range obsoleteResources {
		if err := r.doc.Delete(resourcesSection, id); err != nil {
			return missingKey(id, err, resourcesSection, id)
		}
		r.result.RemovedResources = append(r.result.RemovedResources, id)
	}

	for _, p := range deploymentParameters {
		if err := r.doc.Set(p.Def, parametersSection, p.Name); err != nil {
			return err
		}
		r.result.AddedParameters = append(r.result.AddedParameters, p.Name)
	}
	return nil
}

// stripLogGroup removes a framework log group and detaches its function
// from it.
func (r *rewriter) stripLogGroup(id string) error {
	base := strings.TrimSuffix(id, logGroupSuffix)
	fn := base + functionSuffix

	if err := r.doc.Delete(resourcesSection, id); err != nil {
		return missingKey(id, err, resourcesSection, id)
	}
	r.result.StrippedLogGroups = append(r.result.StrippedLogGroups, id)

	if !r.doc.Has(resourcesSection, fn) {
		return &KeyError{Resource: id, Path: template.Path(resourcesSection, fn), Kind: ErrMissingSibling}
	}

	// CloudFormation generates the name; a fixed one collides on replacement.
	name := r.doc.Get(resourcesSection, fn, "Properties", "FunctionName")
	if !name.Exists() {
		return &KeyError{Resource: fn, Path: template.Path(resourcesSection, fn, "Properties", "FunctionName"), Kind: ErrMissingKey}
	}
	fmt.Fprintf(r.log, "Function name: %s\n", name.String())
	if err := r.doc.Delete(resourcesSection, fn, "Properties", "FunctionName"); err != nil {
		return missingKey(fn, err, resourcesSection, fn, "Properties", "FunctionName")
	}
	r.result.RenamedFunctions[fn] = name.String()

	if err := r.doc.RemoveString(base+logGroupSuffix, resourcesSection, fn, "DependsOn"); err != nil {
		return &KeyError{Resource: fn, Path: template.Path(resourcesSection, fn, "DependsOn"), Kind: ErrMissingSibling, Err: err}
	}

	key := r.doc.Get(resourcesSection, fn, "Properties", "Code", "S3Key")
	if !key.Exists() {
		return &KeyError{Resource: fn, Path: template.Path(resourcesSection, fn, "Properties", "Code", "S3Key"), Kind: ErrMissingKey}
	}
	switch {
	case strings.HasSuffix(key.String(), ".zip"):
		return r.doc.Set(r.zipKey, resourcesSection, fn, "Properties", "Code", "S3Key")
	case strings.HasSuffix(key.String(), ".jar"):
		return r.doc.Set(r.jarKey, resourcesSection, fn, "Properties", "Code", "S3Key")
	}
	return nil
}

// rewriteResource applies the per-resource rules to one logical ID.
// More than one rule may match.
func (r *rewriter) rewriteResource(id string) error {
	if id == executionRoleID {
		if err := r.doc.Delete(resourcesSection, id, "Properties", "RoleName"); err != nil {
			return missingKey(id, err, resourcesSection, id, "Properties", "RoleName")
		}
		if err := r.annotate(id, executionRoleSuppressions); err != nil {
			return err
		}
	}

	if id == authorizerID {
		if err := r.name(id, "authorizer"); err != nil {
			return err
		}
	}

	if strings.HasSuffix(id, functionSuffix) {
		if err := r.hardenFunction(id); err != nil {
			return err
		}
	}

	if id == restAPIID {
		if err := r.name(id, "api"); err != nil {
			return err
		}
	}

	for _, rule := range patternSuppressions {
		if rule.Match(id) {
			if err := r.annotate(id, rule.Metadata); err != nil {
				return err
			}
		}
	}
	return nil
}

// hardenFunction replaces the function's metadata and deployment package.
func (r *rewriter) hardenFunction(id string) error {
	if err := r.requireProperties(id); err != nil {
		return err
	}
	if err := r.annotate(id, functionSuppressions); err != nil {
		return err
	}

	desc := r.doc.Get(resourcesSection, id, "Properties", "Description")
	if desc.Type == gjson.String {
		cleaned := strings.ReplaceAll(desc.String(), "\n", "")
		if err := r.doc.Set(cleaned, resourcesSection, id, "Properties", "Description"); err != nil {
			return err
		}
	}

	if err := r.doc.Set(functionCode(id, r.zipKey, r.jarKey), resourcesSection, id, "Properties", "Code"); err != nil {
		return err
	}
	r.result.HardenedFunctions = append(r.result.HardenedFunctions, id)
	return nil
}

// name gives a resource a physical name scoped to the stack.
func (r *rewriter) name(id, suffix string) error {
	if err := r.requireProperties(id); err != nil {
		return err
	}
	if err := r.doc.Set(intrinsics.StackScopedName(suffix), resourcesSection, id, "Properties", "Name"); err != nil {
		return err
	}
	r.result.Named = append(r.result.Named, id)
	return nil
}

// annotate overwrites the resource's Metadata with the given suppressions.
func (r *rewriter) annotate(id string, meta voicemail.NagMetadata) error {
	if err := r.doc.Set(meta, resourcesSection, id, "Metadata"); err != nil {
		return err
	}
	r.result.Suppressed[id] = meta.IDs()
	return nil
}

func (r *rewriter) requireProperties(id string) error {
	if !r.doc.Get(resourcesSection, id, "Properties").IsObject() {
		return &KeyError{Resource: id, Path: template.Path(resourcesSection, id, "Properties"), Kind: ErrMissingKey}
	}
	return nil
}

// missingKey converts a failed delete into a KeyError. Absent paths are
// reported without repeating the path in the cause.
func missingKey(id string, err error, keys ...string) error {
	ke := &KeyError{Resource: id, Path: template.Path(keys...), Kind: ErrMissingKey}
	if !isNotFound(err) {
		ke.Err = err
	}
	return ke
}
