// Command transform-template rewrites the CloudFormation template generated
// by the Serverless Framework into the template shipped with the voicemail
// stack.
//
// Usage:
//
//	transform-template --template .serverless/cloudformation-template-update-stack.json \
//	    --save deployment/voicemail.template \
//	    --zip voicemail/lambda.zip --jar voicemail/kvs-processor.jar
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dkocen/voicemail-for-amazon-connect/internal/transform"
)

var (
	errorColor   = color.New(color.FgRed)
	summaryColor = color.New(color.FgCyan)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd creates the transform-template command.
func newRootCmd() *cobra.Command {
	var opts transform.Options

	cmd := &cobra.Command{
		Use:   "transform-template",
		Short: "Rewrite a Serverless CloudFormation template for pipeline deployment",
		Long: `transform-template rewrites the CloudFormation template generated by the
Serverless Framework so it can be deployed from a pipeline:

    - framework log groups and the deployment bucket are removed
    - function and role names are left to CloudFormation
    - every function is deployed from the given zip or jar key
    - cfn_nag suppressions are added where the stack needs them

Example:
    transform-template --template serverless.json --save voicemail.template \
        --zip lambda/functions.zip --jar lambda/kvs-processor.jar`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags parsed; later failures are not usage errors.
			cmd.SilenceUsage = true
			opts.Log = cmd.ErrOrStderr()
			return runTransform(cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.TemplatePath, "template", "", "Path to the Serverless CloudFormation template")
	cmd.Flags().StringVar(&opts.SavePath, "save", "", "Path to write the transformed template")
	cmd.Flags().StringVar(&opts.ZipKey, "zip", "", "S3 key of the Lambda zip package")
	cmd.Flags().StringVar(&opts.JarKey, "jar", "", "S3 key of the Lambda jar package")
	for _, name := range []string{"template", "save", "zip", "jar"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// runTransform rewrites the template and reports what changed.
func runTransform(w io.Writer, opts transform.Options) error {
	result, err := transform.Transform(opts)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}

	summaryColor.Fprintf(w, "Wrote %s: %d functions, %d log groups removed, %d resources suppressed\n",
		opts.SavePath, len(result.HardenedFunctions), len(result.StrippedLogGroups), len(result.Suppressed))
	return nil
}
