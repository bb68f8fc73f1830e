package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/nibzard/spec-view-go/internal/history"
)

// historyCommand prints recent commits and the plan tasks each completed.
func historyCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", e.cfg.History.Limit, "Number of commits to read")
	asJSON := fs.Bool("json", false, "Print commits as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("invalid commit count %d", *n)
	}

	commits, err := history.Get(ctx, e.cfg.Root, *n)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if *asJSON {
		if commits == nil {
			commits = []history.Commit{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	}

	if len(commits) == 0 {
		fmt.Fprintln(stdout, "No commits found.")
		return nil
	}
	printCommits(stdout, commits)
	return nil
}

func printCommits(w io.Writer, commits []history.Commit) {
	for _, c := range commits {
		marker := " "
		if c.IsLoop {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s %s  %s  +%d -%d\n",
			marker, c.Hash, c.Timestamp.Local().Format("2006-01-02 15:04"), c.Message, c.Insertions, c.Deletions)
		for _, task := range c.TasksCompleted {
			fmt.Fprintf(w, "      ✓ %s\n", task)
		}
	}
	s := history.Summarize(commits)
	fmt.Fprintf(w, "\n%d commits (%d from the agent loop), %d plan tasks completed, +%d -%d\n",
		s.Commits, s.LoopCommits, s.TasksCompleted, s.Insertions, s.Deletions)
}
