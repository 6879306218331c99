package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v2"

	"esp8266-web/pkg/types"
)

func render(w io.Writer, format string, readings []types.Reading) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(readings)
	case FormatYAML:
		out, err := yaml.Marshal(readings)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatTable, "":
		return renderTable(w, readings)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, readings []types.Reading) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME (UTC)\tTEMP CO\tTEMP ROOM\tHUMIDITY")
	for _, r := range readings {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.1f%%\n",
			r.ID,
			time.Unix(r.Timestamp, 0).UTC().Format(time.RFC3339),
			r.TempCo,
			r.TempRoom,
			r.Humidity,
		)
	}
	return tw.Flush()
}
