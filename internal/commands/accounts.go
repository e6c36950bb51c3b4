package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/model"
	"github.com/cleared-dev/bankimport/internal/normalize"
)

func newAccountsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List bank accounts",
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

			accts, err := l.catalog.Accounts(ctx)
			if err != nil {
				return err
			}
			if len(accts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
				return nil
			}
			rows := make([][]string, len(accts))
			for i, a := range accts {
				rows[i] = []string{
					strconv.FormatInt(a.ID, 10), a.Name, a.BankName, string(a.Type),
					formatAmount(a.InitialBalance), formatAmount(a.CurrentBalance),
				}
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "Name", "Bank", "Type", "Initial", "Current"}, rows)
		},
	}
	cmd.AddCommand(newAccountsAddCommand(opts))
	return cmd
}

func newAccountsAddCommand(opts *options) *cobra.Command {
	var (
		bank        string
		accountType string
		initial     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseAccountType(accountType)
			if err != nil {
				return err
			}
			balance := decimal.Zero
			if initial != "" {
				if balance, err = normalize.ParseAmount(initial); err != nil {
					return err
				}
			}

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

			id, err := l.store.AddAccount(ctx, model.Account{
				Name:           args[0],
				BankName:       bank,
				Type:           typ,
				InitialBalance: balance,
			})
			if err != nil {
				return err
			}
			l.catalog.InvalidateAccounts()
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s (%d)\n", args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank name, one of the supported institutions")
	_ = cmd.MarkFlagRequired("bank")
	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeCheckings), "checkings, savings or credit")
	cmd.Flags().StringVar(&initial, "initial-balance", "", "opening balance, e.g. 1,250.00")

	return cmd
}
