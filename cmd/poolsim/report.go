package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

func printReport(w io.Writer, r report) {
	header := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)

	header.Fprintf(w, "pool %s (core=%d max=%d queue=%d)\n", r.Pool, r.Core, r.Max, r.Queue)
	fmt.Fprintf(w, "  %-10s %d\n", "submitted", r.Submitted)
	green.Fprintf(w, "  %-10s %d\n", "accepted", r.Accepted)
	green.Fprintf(w, "  %-10s %d\n", "completed", r.Completed)

	rejected := green
	if r.Rejected > 0 {
		rejected = red
	}
	rejected.Fprintf(w, "  %-10s %d\n", "rejected", r.Rejected)

	drained := green
	if r.Drained > 0 {
		drained = yellow
	}
	drained.Fprintf(w, "  %-10s %d\n", "drained", r.Drained)

	largest := green
	if r.Largest > r.Core {
		largest = yellow
	}
	largest.Fprintf(w, "  %-10s %d\n", "largest", r.Largest)
	fmt.Fprintf(w, "  %-10s %s\n", "elapsed", r.Elapsed.Round(time.Millisecond))
}
