package models

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the report as aligned terminal output, one line per
// check plus a summary line.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, result := range r.Results {
		detail := result.Detail
		if result.Version != "" {
			detail = fmt.Sprintf("%s (version %s)", detail, result.Version)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", result.Status, result.Name, detail)
		if result.Advice != "" {
			fmt.Fprintf(tw, "\t\t  hint: %s\n", result.Advice)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	passed := 0
	for _, result := range r.Results {
		if result.Status == StatusPass {
			passed++
		}
	}
	_, err := fmt.Fprintf(w, "\n%s: %d/%d checks passed on %s\n",
		r.Status, passed, len(r.Results), r.Platform)
	return err
}

// WriteText renders the link report, listing broken links first.
func (lr *LinkReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, link := range lr.Results {
		if link.OK {
			continue
		}
		reason := link.Error
		if reason == "" {
			reason = fmt.Sprintf("HTTP %d", link.StatusCode)
		}
		fmt.Fprintf(tw, "BROKEN\t%s\t%s\n", link.URL, reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d links checked, %d broken (%s)\n",
		len(lr.Results), lr.Broken, lr.Doc)
	return err
}
