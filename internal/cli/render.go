package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// optNumber renders a nullable number, "-" when unset.
func optNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optText(v *string) string {
	if t := brew.Text(v); t != "" {
		return t
	}
	return "-"
}

func optDate(d *brew.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func optStyle(v *string) string {
	if v == nil {
		return "-"
	}
	return brew.DisplayStyle(*v)
}

// table writes aligned columns.
func table(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// fields writes "label: value" lines with aligned values.
func fields(w io.Writer, pairs ...[2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", p[0], p[1])
	}
	tw.Flush()
}
