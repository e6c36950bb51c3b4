package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/model"
)

func newCategoriesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List transaction categories",
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

			cats, err := l.catalog.Categories(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, len(cats))
			for i, c := range cats {
				rows[i] = []string{strconv.FormatInt(c.ID, 10), c.Name, c.Color, c.Icon}
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "Name", "Color", "Icon"}, rows)
		},
	}
	cmd.AddCommand(newCategoriesAddCommand(opts))
	return cmd
}

func newCategoriesAddCommand(opts *options) *cobra.Command {
	var c model.Category

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			c.Name = args[0]
			id, err := l.catalog.AddCategory(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%d)\n", c.Name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Color, "color", "#64748b", "display color")
	cmd.Flags().StringVar(&c.SecondaryColor, "secondary-color", "", "secondary display color")
	cmd.Flags().StringVar(&c.Icon, "icon", "tag", "icon name")

	return cmd
}
