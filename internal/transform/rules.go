package transform

import (
	"strings"

	voicemail "github.com/dkocen/voicemail-for-amazon-connect"
	"github.com/dkocen/voicemail-for-amazon-connect/intrinsics"
)

// Logical IDs the rewrite looks for or produces.
const (
	executionRoleID    = "IamRoleLambdaExecution"
	authorizerID       = "AuthorizerApiGatewayAuthorizer"
	restAPIID          = "ApiGatewayRestApi"
	recordingFuncID    = "KvsProcessRecordingLambdaFunction"
	recordingsBucketID = "AudioRecordingsBucket"
	readPolicyID       = "AudioRecordingsBucketReadPolicy"

	deploymentBucketID       = "ServerlessDeploymentBucket"
	deploymentBucketPolicyID = "ServerlessDeploymentBucketPolicy"

	jarVersionParam = "LambdaDeploymentJarPackageVersion"
	zipVersionParam = "LambdaDeploymentZipPackageVersion"

	logGroupSuffix = "LogGroup"
	functionSuffix = "LambdaFunction"
)

// Log groups under these prefixes belong to API Gateway, not to a function.
var apiLogGroupPrefixes = []string{"ApiGateway", "ApiAccess"}

// executionRoleSuppressions applies to the shared Lambda execution role.
var executionRoleSuppressions = voicemail.Suppress(
	voicemail.Suppression{ID: "W11", Reason: "Used to send emails to any email address"},
)

// functionSuppressions applies to every Lambda function. It replaces any
// metadata the function already had.
var functionSuppressions = voicemail.Suppress(
	voicemail.Suppression{ID: "W89", Reason: "Lambda functions will not be deployed inside a VPC for now"},
	voicemail.Suppression{ID: "W92", Reason: "Lambda functions will not define ReservedConcurrentExecutions to reserve simultaneous executions for now"},
)

// SuppressionRule attaches cfn_nag metadata to resources whose logical
// ID matches.
type SuppressionRule struct {
	Name     string
	Match    func(logicalID string) bool
	Metadata voicemail.NagMetadata
}

func hasPrefix(prefix string) func(string) bool {
	return func(id string) bool { return strings.HasPrefix(id, prefix) }
}

func hasSuffix(suffix string) func(string) bool {
	return func(id string) bool { return strings.HasSuffix(id, suffix) }
}

// patternSuppressions run in order after the per-resource rules; when two
// match the same resource the later one wins.
var patternSuppressions = []SuppressionRule{
	{
		Name:  "voicemail stream role",
		Match: hasPrefix("ContactVoicemailStreamIamRole"),
		Metadata: voicemail.Suppress(
			voicemail.Suppression{ID: "W21", Reason: "NotResource needed to send SMS from SNS."},
			voicemail.Suppression{ID: "W11", Reason: "Must allow all resources for transcribe."},
			voicemail.Suppression{ID: "W76", Reason: "IAM policy needs the verbosity."},
		),
	},
	{
		Name:  "api access log group",
		Match: hasPrefix("ApiAccessLogGroup"),
		Metadata: voicemail.Suppress(
			voicemail.Suppression{ID: "W84", Reason: "CloudWatchLogs LogGroup will not specify a KMS Key Id to encrypt the log data for now."},
			voicemail.Suppression{ID: "W86", Reason: "CloudWatchLogs LogGroup will not specify RetentionInDays to expire the log data for now."},
		),
	},
	{
		Name:  "recording processor role",
		Match: hasPrefix("KvsProcessRecordingIamRole"),
		Metadata: voicemail.Suppress(
			voicemail.Suppression{ID: "W11", Reason: "Must allow all resources for kinesis video streams."},
		),
	},
	{
		Name:  "api deployment",
		Match: hasPrefix("ApiGatewayDeployment"),
		Metadata: voicemail.Suppress(
			voicemail.Suppression{ID: "W45", Reason: "Updating this field prevents stack updates."},
		),
	},
	{
		Name:  "options method",
		Match: hasSuffix("Options"),
		Metadata: voicemail.Suppress(
			voicemail.Suppression{ID: "W59", Reason: "Options method cannot have an authorizer."},
		),
	},
}

// PatternSuppressions returns the suppression table in evaluation order.
func PatternSuppressions() []SuppressionRule {
	out := make([]SuppressionRule, len(patternSuppressions))
	copy(out, patternSuppressions)
	return out
}

// isFunctionLogGroup reports whether id names a log group the framework
// created for one of its functions.
func isFunctionLogGroup(id string) bool {
	if !strings.HasSuffix(id, logGroupSuffix) {
		return false
	}
	for _, p := range apiLogGroupPrefixes {
		if strings.HasPrefix(id, p) {
			return false
		}
	}
	return true
}

// functionCode points a function at the pipeline's deployment bucket.
func functionCode(logicalID, zipKey, jarKey string) voicemail.LambdaCode {
	if logicalID == recordingFuncID {
		return voicemail.LambdaCode{
			S3Bucket:        intrinsics.Param(deploymentBucketID),
			S3Key:           jarKey,
			S3ObjectVersion: intrinsics.Param(jarVersionParam),
		}
	}
	return voicemail.LambdaCode{
		S3Bucket:        intrinsics.Param(deploymentBucketID),
		S3Key:           zipKey,
		S3ObjectVersion: intrinsics.Param(zipVersionParam),
	}
}

// recordingsReadPolicy lets the account read recordings and refuses any
// request to the bucket that is not made over TLS.
func recordingsReadPolicy() voicemail.ResourceDef {
	objects := intrinsics.ObjectsIn(recordingsBucketID)
	return voicemail.ResourceDef{
		Type: "AWS::S3::BucketPolicy",
		Properties: map[string]any{
			"Bucket": intrinsics.Ref{LogicalName: recordingsBucketID},
			"PolicyDocument": intrinsics.PolicyDocument{
				Statement: []any{
					intrinsics.PolicyStatement{
						Effect:    "Allow",
						Principal: intrinsics.AWSPrincipal{intrinsics.AWS_ACCOUNT_ID},
						Action:    "s3:GetObject",
						Resource:  objects,
					},
					intrinsics.PolicyStatement{
						Effect:    "Deny",
						Principal: intrinsics.AllPrincipal,
						Action:    "s3:*",
						Resource:  objects,
						Condition: intrinsics.InsecureTransport(),
					},
				},
			},
		},
	}
}

// deploymentParameter pairs a parameter name with its definition.
type deploymentParameter struct {
	Name string
	Def  voicemail.Parameter
}

// deploymentParameters are written in this order, replacing any
// parameter of the same name.
var deploymentParameters = []deploymentParameter{
	{deploymentBucketID, voicemail.StringParameter("The bucket to which the lambda zips are deployed to")},
	{jarVersionParam, voicemail.StringParameter("S3 Object Version of the Lambda Deployment Jar Package")},
	{zipVersionParam, voicemail.StringParameter("S3 Object Version of the Lambda Deployment Zip Package")},
}

// obsoleteResources are removed once the template no longer deploys
// through the framework's own bucket.
var obsoleteResources = []string{deploymentBucketPolicyID, deploymentBucketID}
