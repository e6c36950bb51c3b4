package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/config"
	"github.com/cleared-dev/bankimport/internal/importer"
	"github.com/cleared-dev/bankimport/internal/importlog"
)

func newBatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Import every statement in import/ that matches a configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			return p.runBatch(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (p *project) runBatch(ctx context.Context, out io.Writer) error {
	files, err := importer.Scan(p.dir)
	if err != nil {
		return err
	}

	var (
		jobs    []importer.Job
		sources []config.Source
	)
	for _, f := range files {
		src, ok := p.cfg.SourceFor(f.Name)
		if !ok {
			p.logger.Warn("no source matches statement, leaving it in place", "file", f.Name)
			continue
		}
		jobs = append(jobs, importer.Job{Path: f.Path, Institution: src.Institution})
		sources = append(sources, src)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No statements to import")
		return nil
	}

	l, err := p.openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	results := p.registry().ImportAll(ctx, jobs, p.cfg.Import.Concurrency)

	entries := make([]importlog.Entry, 0, len(results))
	failed := 0
	for i, r := range results {
		name := filepath.Base(r.Path)
		err := r.Err
		if err == nil {
			_, err = l.saveImports(ctx, sources[i].AccountID, sources[i].Category, r.Transactions)
		}
		entries = append(entries, logEntry(r.Path, r.Institution, r.Result, err))
		if err != nil {
			failed++
			p.logger.Error("import failed", "file", name, "institution", r.Institution, "err", err)
			fmt.Fprintf(out, "%s: failed: %v\n", name, err)
			continue
		}

		fmt.Fprintf(out, "%s: %d imported, %d skipped\n", name, len(r.Transactions), len(r.Skipped))
		if p.cfg.Import.MarkProcessed {
			if err := importer.MarkProcessed(p.dir, name); err != nil {
				p.logger.Warn("failed to mark statement processed", "file", name, "err", err)
			}
		}
	}
	p.writeLog(entries)

	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(results))
	}
	return nil
}
