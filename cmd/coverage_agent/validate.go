package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/curriculum-coverage/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON document against its schema",
	Long:  "Validate a curriculum, content inventory or coverage report JSON file against the embedded JSON Schema.",
	RunE:  runValidate,
}

var (
	validateKind string
	validateFile string
)

func init() {
	validateCmd.Flags().StringVarP(&validateKind, "kind", "k", "", "Document kind: curriculum, content or report (required)")
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to JSON file (required)")

	_ = validateCmd.MarkFlagRequired("kind")
	_ = validateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	kind, err := schemas.ParseKind(validateKind)
	if err != nil {
		return err
	}

	if err := schemas.ValidateFile(kind, validateFile); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s is not a valid %s document:\n%w", validateFile, kind, verr)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation successful: %s is a valid %s document\n", validateFile, kind)
	return nil
}
