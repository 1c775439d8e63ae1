package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/IQDevs/blog/internal/config"
	"github.com/IQDevs/blog/internal/history"
)

func runHistory(ctx context.Context, cfg *config.Config, limit int, buildID string) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var records []history.Record
	if buildID != "" {
		records, err = store.ByBuildID(ctx, buildID)
	} else {
		records, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No build history recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tBUILD\tOUTCOME\tTRIGGER\tPOSTS\tPAGES\tDURATION\tCOMMIT\tERROR")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(r.BuildID),
			r.Outcome,
			r.Trigger,
			r.Posts,
			r.Pages,
			r.Duration.Round(time.Millisecond),
			shortID(r.Commit),
			r.Error)
	}
	return w.Flush()
}

// shortID abbreviates UUIDs and commit hashes for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
