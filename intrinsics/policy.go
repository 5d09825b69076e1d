package intrinsics

import (
	"encoding/json"
)

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like Condition blocks.
type Json = map[string]any

// PolicyDocument represents an IAM policy document.
// Version is omitted when empty, as the bucket policies written by the
// transform have always been.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// PolicyStatement represents an IAM policy statement.
//
// Example:
//
//	PolicyStatement{
//	    Effect:    "Allow",
//	    Principal: AWSPrincipal{AWS_ACCOUNT_ID},
//	    Action:    "s3:GetObject",
//	    Resource:  ObjectsIn("AudioRecordingsBucket"),
//	}
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// AWSPrincipal represents an AWS account/role/user principal.
// Serializes to {"AWS": ...} format.
type AWSPrincipal []any

// MarshalJSON serializes to {"AWS": ...} format.
func (p AWSPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"AWS": p[0]})
	}
	return json.Marshal(map[string]any{"AWS": []any(p)})
}

// AllPrincipal represents the wildcard principal "*".
const AllPrincipal = "*"

// Bool is the IAM boolean condition operator.
const Bool = "Bool"

// InsecureTransport matches requests that were not sent over TLS.
// The value is the string "false", which is how IAM compares it.
func InsecureTransport() Json {
	return Json{Bool: Json{"aws:SecureTransport": "false"}}
}
