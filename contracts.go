// Package voicemail holds the CloudFormation shapes shared by the
// template-rewriting tooling of the Amazon Connect voicemail stack.
//
// The Serverless Framework emits a deployment template that names every
// function, creates its own log groups and ships its own deployment bucket.
// The transform-template CLI rewrites that output into a template that can
// be deployed repeatedly from a pipeline:
//
//	transform-template --template serverless.json --save voicemail.template \
//	    --zip lambda/functions.zip --jar lambda/kvs-processor.jar
//
// Values in this package are marshaled into the template verbatim, so
// struct field order is the order keys appear in the output.
package voicemail

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type"`
	Metadata   *NagMetadata   `json:"Metadata,omitempty"`
	Properties map[string]any `json:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty"`
}

// Parameter is a CloudFormation template parameter.
// Default is always written, even when empty.
type Parameter struct {
	Type        string `json:"Type"`
	Default     any    `json:"Default"`
	Description string `json:"Description,omitempty"`
}

// StringParameter returns a String parameter with an empty default.
func StringParameter(description string) Parameter {
	return Parameter{Type: "String", Default: "", Description: description}
}

// Suppression tells cfn_nag to skip a rule for one resource.
type Suppression struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// NagMetadata is the resource Metadata block understood by cfn_nag.
//
// When serialized it becomes:
//
//	{"cfn_nag": {"rules_to_suppress": [{"id": "W11", "reason": "..."}]}}
type NagMetadata struct {
	CfnNag NagRules `json:"cfn_nag"`
}

// NagRules lists the suppressed cfn_nag rules.
type NagRules struct {
	RulesToSuppress []Suppression `json:"rules_to_suppress"`
}

// Suppress builds a NagMetadata block from the given suppressions.
func Suppress(rules ...Suppression) NagMetadata {
	return NagMetadata{CfnNag: NagRules{RulesToSuppress: rules}}
}

// IDs returns the suppressed rule IDs in declaration order.
func (m NagMetadata) IDs() []string {
	ids := make([]string, 0, len(m.CfnNag.RulesToSuppress))
	for _, r := range m.CfnNag.RulesToSuppress {
		ids = append(ids, r.ID)
	}
	return ids
}

// LambdaCode is the Code property of an AWS::Lambda::Function that is
// deployed from an S3 object.
type LambdaCode struct {
	S3Bucket        any    `json:"S3Bucket"`
	S3Key           string `json:"S3Key"`
	S3ObjectVersion any    `json:"S3ObjectVersion"`
}

// TransformResult summarizes a template rewrite.
type TransformResult struct {
	// StrippedLogGroups are the framework log groups that were removed.
	StrippedLogGroups []string `json:"stripped_log_groups,omitempty"`
	// RenamedFunctions are functions whose FunctionName was dropped,
	// mapped to the name they had.
	RenamedFunctions map[string]string `json:"renamed_functions,omitempty"`
	// HardenedFunctions are the Lambda functions given new Code and metadata.
	HardenedFunctions []string `json:"hardened_functions,omitempty"`
	// Suppressed maps a logical ID to the cfn_nag rules it now suppresses.
	Suppressed map[string][]string `json:"suppressed,omitempty"`
	// Named are the resources given a stack-derived Name.
	Named []string `json:"named,omitempty"`
	// AddedResources and RemovedResources list template-level changes.
	AddedResources   []string `json:"added_resources,omitempty"`
	RemovedResources []string `json:"removed_resources,omitempty"`
	// AddedParameters lists parameters written to the Parameters section.
	AddedParameters []string `json:"added_parameters,omitempty"`
}
