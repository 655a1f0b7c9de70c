package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <topic-id>",
	Short: "Export the latest trail of a topic as JSON or YAML",
	Long: `Export the latest curiosity trail of a topic.

The file is named <Topic_Name>_curiosity_trail.<format> unless --output is
given. Use --output - to write to stdout.

Examples:
  akiliquest export 6a1f0c2e9b3d4e5f60718293
  akiliquest export 6a1f0c2e9b3d4e5f60718293 --format yaml --output ./trails`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json, yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file or directory, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := models.ExportFormat(strings.ToLower(exportFormat))

	data, name, err := be.Export(cmd.Context(), args[0], format)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out := cmd.OutOrStdout()
	if exportOutput == "-" {
		_, err := out.Write(data)
		return err
	}

	path := name
	if exportOutput != "" {
		path = exportOutput
		if info, err := os.Stat(exportOutput); err == nil && info.IsDir() {
			path = filepath.Join(exportOutput, name)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(out, "Exported trail to %s\n", path)
	return nil
}
