package cli

import (
	"encoding/json"
	"io"
	"text/tabwriter"
)

// render writes data as indented JSON, or hands a tab-aligned writer to text.
func render(opts *RootOptions, w io.Writer, data any, text func(tw *tabwriter.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}
