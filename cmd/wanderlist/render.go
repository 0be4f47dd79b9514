package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/wanderlist/pkg/core"
)

const gridColumns = 2

// render prints notes either one per line or as a two column grid of cards.
func render(w io.Writer, notes []core.Note, showList bool) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, "No destinations yet.")
		return err
	}
	if showList {
		return renderList(w, notes)
	}
	return renderGrid(w, notes)
}

func renderList(w io.Writer, notes []core.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, n := range notes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, n.Tujuan, n.Kendaraan, firstLine(n.Catatan))
	}
	return tw.Flush()
}

func renderGrid(w io.Writer, notes []core.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 4, ' ', 0)
	for start := 0; start < len(notes); start += gridColumns {
		row := notes[start:min(start+gridColumns, len(notes))]
		lines := [3][]string{}
		for _, n := range row {
			lines[0] = append(lines[0], fmt.Sprintf("[%d] %s", n.ID, n.Tujuan))
			lines[1] = append(lines[1], n.Kendaraan)
			lines[2] = append(lines[2], firstLine(n.Catatan))
		}
		for _, l := range lines {
			fmt.Fprintln(tw, strings.Join(l, "\t")+"\t")
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
