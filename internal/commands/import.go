package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/importer"
	"github.com/cleared-dev/bankimport/internal/importlog"
	"github.com/cleared-dev/bankimport/internal/model"
)

// defaultCategory receives saved transactions when no category is given.
const defaultCategory = "Uncategorized"

type skippedOutput struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importOutput struct {
	File         string                    `json:"file"`
	Institution  string                    `json:"institution"`
	Transactions []model.TransactionImport `json:"transactions"`
	Skipped      []skippedOutput           `json:"skipped"`
	SavedIDs     []int64                   `json:"saved_ids,omitempty"`
	Error        *importer.ImportError     `json:"error,omitempty"`
}

func newInstitutionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "institutions",
		Short: "List supported institutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range importer.DefaultRegistry().Institutions() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newImportCommand(opts *options) *cobra.Command {
	var (
		institution string
		category    string
		accountID   int64
		save        bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a statement export, optionally saving it to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save && accountID <= 0 {
				return errors.New("--save requires --account")
			}

			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}

			path := args[0]
			out := importOutput{File: path, Institution: institution}

			res, err := p.registry().Import(path, institution)
			if err != nil {
				if save {
					p.appendLog(path, institution, importer.Result{}, err)
				}
				if asJSON && errors.As(err, &out.Error) {
					_ = writeJSON(cmd.OutOrStdout(), out)
				}
				return err
			}

			out.Transactions = res.Transactions
			out.Skipped = make([]skippedOutput, len(res.Skipped))
			for i, s := range res.Skipped {
				out.Skipped[i] = skippedOutput{Line: s.Line, Error: s.Err.Error()}
			}

			if save {
				out.SavedIDs, err = p.save(cmd.Context(), accountID, category, res.Transactions)
				p.appendLog(path, institution, res, err)
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printImport(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&institution, "institution", "i", "", "institution that produced the file (see 'institutions')")
	_ = cmd.MarkFlagRequired("institution")
	cmd.Flags().BoolVar(&save, "save", false, "save the transactions to the database")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id to save into")
	cmd.Flags().StringVar(&category, "category", defaultCategory, "category for saved transactions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// save stores txns under accountID in the named category.
func (p *project) save(ctx context.Context, accountID int64, category string, txns []model.TransactionImport) ([]int64, error) {
	l, err := p.openLedger(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	return l.saveImports(ctx, accountID, category, txns)
}

func (l *ledger) saveImports(ctx context.Context, accountID int64, category string, txns []model.TransactionImport) ([]int64, error) {
	if category == "" {
		category = defaultCategory
	}
	cat, err := l.catalog.CategoryByName(ctx, category)
	if err != nil {
		return nil, err
	}
	return l.store.SaveImports(ctx, accountID, cat.ID, txns)
}

func (p *project) appendLog(path, institution string, res importer.Result, err error) {
	p.writeLog([]importlog.Entry{logEntry(path, institution, res, err)})
}

func (p *project) writeLog(entries []importlog.Entry) {
	if err := importlog.Append(p.dir, entries); err != nil {
		p.logger.Warn("failed to write import log", "err", err)
	}
}

func logEntry(path, institution string, res importer.Result, err error) importlog.Entry {
	e := importlog.Entry{
		Timestamp:   time.Now(),
		File:        filepath.Base(path),
		Institution: institution,
		Status:      importlog.StatusOK,
	}
	if err != nil {
		e.Status = importlog.StatusFailed
		e.Error = err.Error()
		return e
	}
	e.Imported = len(res.Transactions)
	e.Skipped = len(res.Skipped)
	return e
}

func printImport(w io.Writer, out importOutput) error {
	rows := make([][]string, len(out.Transactions))
	for i, t := range out.Transactions {
		rows[i] = []string{t.Date.Format(model.DateFormat), t.Name, formatAmount(t.Amount)}
	}
	if err := writeTable(w, []string{"Date", "Name", "Amount"}, rows); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d transactions, %d skipped", len(out.Transactions), len(out.Skipped))
	if len(out.SavedIDs) > 0 {
		fmt.Fprintf(w, ", %d saved", len(out.SavedIDs))
	}
	fmt.Fprintln(w)
	for _, s := range out.Skipped {
		fmt.Fprintf(w, "  line %d: %s\n", s.Line, s.Error)
	}
	return nil
}
