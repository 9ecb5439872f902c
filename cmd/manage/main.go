package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/analytics"
	"github.com/yungbote/gradebridge-backend/internal/app"
)

type options struct {
	view        bool
	stats       bool
	seed        bool
	clearTest   bool
	clearAll    bool
	clearBefore string
	clearAfter  string
	diagnose    bool
	importPath  string
	yes         bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.view, "view", false, "print all evaluation records, newest first")
	flag.BoolVar(&opts.stats, "stats", false, "print record totals and unique students/topics")
	flag.BoolVar(&opts.seed, "seed", false, "insert the sample evaluation records")
	flag.BoolVar(&opts.clearTest, "clear-test", false, "delete records for the sample topics and students")
	flag.BoolVar(&opts.clearAll, "clear-all", false, "delete every evaluation record")
	flag.StringVar(&opts.clearBefore, "clear-before", "", "delete records created before this time (RFC3339 or YYYY-MM-DD)")
	flag.StringVar(&opts.clearAfter, "clear-after", "", "delete records created after this time (RFC3339 or YYYY-MM-DD)")
	flag.BoolVar(&opts.diagnose, "diagnose", false, "report table presence, row counts, columns and the similarity function")
	flag.StringVar(&opts.importPath, "import", "", "import guidelines from a YAML list of {question, solution}")
	flag.BoolVar(&opts.yes, "yes", false, "skip confirmation for destructive commands")
	flag.Parse()

	if flag.NFlag() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tk, err := app.NewToolkit()
	if err != nil {
		fmt.Printf("init: %v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), tk, opts)
	tk.Close()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, tk *app.Toolkit, opts options) error {
	m := tk.Maintenance

	if opts.diagnose {
		if err := printJSON(m.Diagnose(ctx)); err != nil {
			return err
		}
	}
	if opts.seed {
		n, err := m.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Printf("inserted %d sample records\n", n)
	}
	if opts.importPath != "" {
		if err := importGuidelines(ctx, tk, opts.importPath); err != nil {
			return err
		}
	}
	if opts.clearTest {
		if !confirm(opts.yes, "Delete all sample/test evaluation records?") {
			fmt.Println("skipped -clear-test")
		} else {
			n, err := m.ClearTestData(ctx)
			if err != nil {
				return fmt.Errorf("clear test data: %w", err)
			}
			fmt.Printf("deleted %d test records\n", n)
		}
	}
	if opts.clearBefore != "" {
		cutoff, err := parseCutoff(opts.clearBefore)
		if err != nil {
			return err
		}
		if !confirm(opts.yes, fmt.Sprintf("Delete records created before %s?", cutoff.Format(time.RFC3339))) {
			fmt.Println("skipped -clear-before")
		} else {
			n, err := m.ClearBefore(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("clear before: %w", err)
			}
			fmt.Printf("deleted %d records\n", n)
		}
	}
	if opts.clearAfter != "" {
		cutoff, err := parseCutoff(opts.clearAfter)
		if err != nil {
			return err
		}
		if !confirm(opts.yes, fmt.Sprintf("Delete records created after %s?", cutoff.Format(time.RFC3339))) {
			fmt.Println("skipped -clear-after")
		} else {
			n, err := m.ClearAfter(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("clear after: %w", err)
			}
			fmt.Printf("deleted %d records\n", n)
		}
	}
	if opts.clearAll {
		if !confirm(opts.yes, "Delete EVERY evaluation record? This cannot be undone.") {
			fmt.Println("skipped -clear-all")
		} else {
			n, err := m.ClearAll(ctx)
			if err != nil {
				return fmt.Errorf("clear all: %w", err)
			}
			fmt.Printf("deleted %d records\n", n)
		}
	}
	if opts.stats {
		st, err := m.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		fmt.Printf("evaluations: %d\nunique students: %d\nunique topics: %d\nguidelines: %d\n",
			st.Total, st.UniqueStudents, st.UniqueTopics, st.Guidelines)
	}
	if opts.view {
		rows := m.View(ctx)
		if len(rows) == 0 {
			fmt.Println("no evaluation records")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tTOPIC\tSTUDENT\tSCORE\tGRADE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.CreatedAt.UTC().Format(time.DateTime), r.Topic, r.StudentName, r.Score, r.Grade)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if avg := analytics.AverageScore(rows); avg > 0 {
			fmt.Printf("\n%d records, average score %.2f\n", len(rows), avg)
		}
	}
	return nil
}

func importGuidelines(ctx context.Context, tk *app.Toolkit, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	svc, closeFn, err := tk.Guidelines(ctx)
	if err != nil {
		return fmt.Errorf("init guideline service: %w", err)
	}
	defer closeFn()

	n, err := svc.ImportYAML(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s after %d guidelines: %w", path, n, err)
	}
	fmt.Printf("imported %d guidelines\n", n)
	return nil
}

func parseCutoff(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("cutoff must be RFC3339 or YYYY-MM-DD: " + raw)
}

func confirm(yes bool, prompt string) bool {
	if yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
