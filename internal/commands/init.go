package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankimport/internal/config"
	"github.com/cleared-dev/bankimport/internal/store"
)

func newInitCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankimport project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir)
		},
	}
}

func runInit(ctx context.Context, out io.Writer, dir string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	gitignore := cfg.Database.Path + "\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// The file keeps the defaults; the database goes wherever the environment says.
	cfg.ApplyEnv(dir)

	// Opening creates the schema and seeds banks and categories.
	st, err := store.Open(ctx, cfg.DatabasePath(dir))
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	fmt.Fprintf(out, "Initialized bankimport project at %s\n", dir)
	return nil
}
