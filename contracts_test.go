package voicemail

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuppress_MarshalJSON(t *testing.T) {
	meta := Suppress(
		Suppression{ID: "W89", Reason: "no VPC"},
		Suppression{ID: "W92", Reason: "no reserved concurrency"},
	)

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.Equal(t,
		`{"cfn_nag":{"rules_to_suppress":[{"id":"W89","reason":"no VPC"},{"id":"W92","reason":"no reserved concurrency"}]}}`,
		string(data))
}

func TestNagMetadata_IDs(t *testing.T) {
	tests := []struct {
		name     string
		meta     NagMetadata
		expected []string
	}{
		{
			name:     "empty",
			meta:     Suppress(),
			expected: []string{},
		},
		{
			name:     "single",
			meta:     Suppress(Suppression{ID: "W11"}),
			expected: []string{"W11"},
		},
		{
			name:     "keeps order",
			meta:     Suppress(Suppression{ID: "W21"}, Suppression{ID: "W11"}, Suppression{ID: "W76"}),
			expected: []string{"W21", "W11", "W76"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meta.IDs())
		})
	}
}

func TestStringParameter_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(StringParameter("Bucket holding the artifacts"))
	require.NoError(t, err)
	assert.Equal(t, `{"Type":"String","Default":"","Description":"Bucket holding the artifacts"}`, string(data))
}

func TestLambdaCode_MarshalJSON(t *testing.T) {
	code := LambdaCode{
		S3Bucket:        map[string]string{"Ref": "Bucket"},
		S3Key:           "lambda.zip",
		S3ObjectVersion: map[string]string{"Ref": "Version"},
	}

	data, err := json.Marshal(code)
	require.NoError(t, err)
	assert.Equal(t, `{"S3Bucket":{"Ref":"Bucket"},"S3Key":"lambda.zip","S3ObjectVersion":{"Ref":"Version"}}`, string(data))
}

func TestResourceDef_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		def      ResourceDef
		expected string
	}{
		{
			name:     "type only",
			def:      ResourceDef{Type: "AWS::S3::Bucket"},
			expected: `{"Type":"AWS::S3::Bucket"}`,
		},
		{
			name: "with metadata",
			def: ResourceDef{
				Type:       "AWS::IAM::Role",
				Metadata:   &NagMetadata{CfnNag: NagRules{RulesToSuppress: []Suppression{{ID: "W11", Reason: "r"}}}},
				Properties: map[string]any{"Path": "/"},
				DependsOn:  []string{"Other"},
			},
			expected: `{"Type":"AWS::IAM::Role","Metadata":{"cfn_nag":{"rules_to_suppress":[{"id":"W11","reason":"r"}]}},"Properties":{"Path":"/"},"DependsOn":["Other"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}
