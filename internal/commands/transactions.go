package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/model"
)

type transactionOutput struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Account  string `json:"account"`
	Category string `json:"category"`
}

func newTransactionsCommand(opts *options) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List saved transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			l, err := p.openLedger(ctx)
			if err != nil {
				return err
			}
			defer l.Close()

			txns, err := l.store.Transactions(ctx, limit)
			if err != nil {
				return err
			}
			rows, err := l.describe(ctx, txns)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return printTransactions(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many (0 shows all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// describe resolves account and category ids to names through the catalog.
func (l *ledger) describe(ctx context.Context, txns []model.Transaction) ([]transactionOutput, error) {
	accts, err := l.catalog.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := l.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}

	accountNames := make(map[int64]string, len(accts))
	for _, a := range accts {
		accountNames[a.ID] = a.Name
	}
	categoryNames := make(map[int64]string, len(cats))
	for _, c := range cats {
		categoryNames[c.ID] = c.Name
	}

	out := make([]transactionOutput, len(txns))
	for i, t := range txns {
		out[i] = transactionOutput{
			ID:       t.ID,
			Date:     t.Date.Format(model.DateFormat),
			Name:     t.Name,
			Amount:   formatAmount(t.Amount),
			Account:  accountNames[t.AccountID],
			Category: categoryNames[t.CategoryID],
		}
	}
	return out, nil
}

func printTransactions(w io.Writer, txns []transactionOutput) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, "No transactions")
		return err
	}
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Date, t.Name, t.Amount, t.Account, t.Category}
	}
	return writeTable(w, []string{"ID", "Date", "Name", "Amount", "Account", "Category"}, rows)
}
