package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/driver"
	"mend/internal/lsp"
	"mend/internal/rules"
	"mend/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the mend language server over stdio",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 300*time.Millisecond, "delay before re-analyzing a changed document")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}
	// таймер сервера не печатается
	opts.Timer = nil
	session, err := driver.NewSession(driver.DefaultSessionSize, opts)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		cfg = &state.cfg
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       debounce,
		Session:        session,
		Catalogue:      rules.Default(),
		Config:         cfg,
		MaxDiagnostics: opts.MaxDiagnostics,
		Version:        version.Version,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
