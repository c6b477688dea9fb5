// Package render turns a packing result into human-readable console output.
// The Renderer interface keeps the packer and its tests free of any display
// dependency.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

// DefaultTopN limits how many included transactions the table shows.
const DefaultTopN = 12

const truncatedIDLen = 16

// Report bundles everything the presentation layer needs for one run.
type Report struct {
	Source   string
	Capacity int64
	TopN     int
	Result   packer.Result
}

// Renderer receives a finished simulation and presents it.
type Renderer interface {
	Render(report Report) error
}

// TableRenderer writes a ranked candidate table plus summary statistics to
// an io.Writer.
type TableRenderer struct {
	out io.Writer
}

// NewTableRenderer creates a renderer writing to out.
func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{out: out}
}

// Render implements Renderer.
func (r *TableRenderer) Render(report Report) error {
	topN := report.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	result := report.Result
	if _, err := fmt.Fprintf(r.out, "Top candidates for next block (source: %s)\n\n", report.Source); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTXID\tRATE (sat/vB)\tVSIZE\tPRIORITY")
	for i, c := range result.Included {
		if i >= topN {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d vB\t%s\n",
			i+1, truncateID(c.ID), c.Rate, c.Size, packer.EstimatePriority(i, len(result.Included)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fillPct := 0.0
	if report.Capacity > 0 {
		fillPct = float64(result.TotalSize) / float64(report.Capacity) * 100
	}

	_, err := fmt.Fprintf(r.out,
		"\nTotal fees:    %d sats\nAverage rate:  %.2f sat/vB\nBlock fill:    %d / %d vB (%.2f%%)\nIncluded:      %d\nExcluded:      %d\n",
		result.TotalFee, result.AverageRate, result.TotalSize, report.Capacity, fillPct,
		len(result.Included), len(result.Excluded))
	if err != nil {
		return err
	}

	if len(result.Excluded) > 0 {
		first := result.Excluded[0]
		if _, err := fmt.Fprintf(r.out, "\nFirst rejected candidate had a rate of %.1f sat/vB.\n", first.Rate); err != nil {
			return err
		}
	}

	return nil
}

func truncateID(id string) string {
	if len(id) <= truncatedIDLen {
		return id
	}
	return id[:truncatedIDLen] + "..."
}
