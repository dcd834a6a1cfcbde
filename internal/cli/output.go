package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(v string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(v))) {
	case "", formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML:
		return formatYAML, nil
	default:
		return "", usageError("unsupported format %q", v)
	}
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", "table", "Output format: table, json, or yaml.")
}

// renderTable renders tab separated rows under an optional title.
func renderTable(title string, headers []string, rows [][]string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	if len(headers) > 0 {
		b.WriteString(strings.Join(headers, "\t"))
		b.WriteByte('\n')
	}
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeOutput prints table text, or data encoded as json/yaml.
func writeOutput(cmd *cobra.Command, format outputFormat, table string, data any) error {
	text := table
	switch format {
	case formatJSON:
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		text = string(raw)
	case formatYAML:
		raw, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		text = strings.TrimRight(string(raw), "\n")
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func formatMiles(miles float64) string {
	return fmt.Sprintf("%.2f mi", miles)
}
