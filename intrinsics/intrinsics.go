// Package intrinsics provides the CloudFormation intrinsic functions used
// when rewriting templates.
//
// The core types are re-exported from cloudformation-schema-go:
//
//	Ref{"MyBucket"} → {"Ref": "MyBucket"}
//	Sub{"arn:aws:s3:::${MyBucket}/*"} → {"Fn::Sub": "arn:aws:s3:::${MyBucket}/*"}
//	Join{"", []any{AWS_STACK_NAME, "-", "api"}} → {"Fn::Join": ["", [{"Ref": "AWS::StackName"}, "-", "api"]]}
package intrinsics

import (
	"fmt"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join
)

// Param creates a Ref for a CloudFormation parameter.
var Param = intrinsics.Param

// StackScopedName joins the stack name and suffix with a hyphen, so
// that two stacks deployed from the same template never collide on a
// physical name.
func StackScopedName(suffix string) Join {
	return Join{Delimiter: "", Values: []any{AWS_STACK_NAME, "-", suffix}}
}

// ObjectsIn returns the ARN pattern matching every object in the bucket
// declared under logicalID.
func ObjectsIn(logicalID string) Sub {
	return Sub{String: fmt.Sprintf("arn:aws:s3:::${%s}/*", logicalID)}
}
