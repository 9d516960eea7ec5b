package main

import (
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/chazu/minivm/lib/store"
	"github.com/chazu/minivm/pkg/bytecode"
)

const storeUsage = "Usage: minivm store save <name> <file> | run <name> | list | history <name> [-n N] | rm <name>"

// handleStoreCommand processes the `minivm store` subcommand family.
func (c *cli) handleStoreCommand(args []string) int {
	if len(args) == 0 {
		return c.usageError(storeUsage)
	}

	st, err := c.openStore()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	defer st.Close()

	switch sub, rest := args[0], args[1:]; sub {
	case "save":
		if len(rest) != 2 {
			return c.usageError("Usage: minivm store save <name> <file>")
		}
		p, err := bytecode.LoadFile(rest[1])
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		p.Name = rest[0]
		if err := st.SaveProgram(p); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(c.stdout, "Saved %s (%d instructions)\n", p.Name, p.Len())
		return 0

	case "run":
		if len(rest) != 1 {
			return c.usageError("Usage: minivm store run <name>")
		}
		p, err := st.LoadProgram(rest[0])
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		return c.execute(p, false, st)

	case "list":
		infos, err := st.ListPrograms()
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tBYTES\tUPDATED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.Size, info.UpdatedAt.Format(time.RFC3339))
		}
		tw.Flush()
		return 0

	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		limit := fs.Int("n", 10, "Number of runs to show (0 for all)")
		if len(rest) == 0 {
			return c.usageError("Usage: minivm store history <name> [-n N]")
		}
		if err := fs.Parse(rest[1:]); err != nil {
			return 2
		}
		recs, err := st.History(rest[0], *limit)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tDURATION\tOUTCOME")
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.StartedAt.Format(time.RFC3339), rec.Duration, outcome(rec))
		}
		tw.Flush()
		return 0

	case "rm":
		if len(rest) != 1 {
			return c.usageError("Usage: minivm store rm <name>")
		}
		if err := st.DeleteProgram(rest[0]); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(c.stdout, "Deleted %s\n", rest[0])
		return 0

	default:
		return c.usageError("Unknown store command: %s\n%s", sub, storeUsage)
	}
}

func outcome(rec store.RunRecord) string {
	switch {
	case !rec.Failed():
		return "= " + rec.Result
	case rec.ErrorKind != "":
		return rec.ErrorKind
	default:
		return "error: " + rec.Error
	}
}
