package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/service"
)

func newPromptCmd() *cobra.Command {
	var (
		analysisType string
		file         string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt built for a matrix file",
		Long:  "Reads matrix data as JSON from --file (or stdin with -) and prints the prompt that would be sent to the model. No network calls are made.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open matrix file: %w", err)
				}
				defer f.Close()
				in = f
			}

			data, err := readMatrix(in)
			if err != nil {
				return err
			}

			prompt, err := service.BuildPrompt(data, domain.AnalysisType(analysisType))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return err
		},
	}

	cmd.Flags().StringVarP(&analysisType, "type", "t", string(domain.AnalysisPersonal), "analysis type: personal, compatibility or any other value for the generic prompt")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "matrix JSON file, - for stdin")
	return cmd
}

// readMatrix accepts either the bare matrix object or a full request body
// with a matrix_data field.
func readMatrix(r io.Reader) (domain.MatrixData, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	if inner, ok := raw["matrix_data"].(map[string]any); ok {
		return inner, nil
	}
	return raw, nil
}
