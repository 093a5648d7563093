package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	corpuslog "github.com/nao1215/corpusdedup/internal/log"
)

// NewRootCmd creates the root command for corpusdedup.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusdedup",
		Short: "Deduplicate text corpora by line or by near-duplicate document",
		Long: `corpusdedup removes duplicated text from document corpora.

The lines command drops every line that appears more than once anywhere in
the corpus, which strips repeated boilerplate such as headers and footers.

The minhash command drops whole documents that are near-duplicates of a
document seen earlier, using MinHash signatures and LSH banding.

Settings come from defaults, a .corpusdedup YAML file, CORPUSDEDUP_*
environment variables and command line flags, in that order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .corpusdedup in current or home directory)")
	cmd.PersistentFlags().String("env-file", "",
		"Load CORPUSDEDUP_* variables from a dotenv file")

	cmd.AddCommand(NewLinesCmd())
	cmd.AddCommand(NewMinHashCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return persistentBool(cmd, "verbose")
}

// persistentBool reads a global flag. Flags of the root command are only
// merged into a subcommand's flag set once it is executed.
func persistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// persistentString reads a global string flag.
func persistentString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the structured logger selected by the global flags.
func setupLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if persistentBool(cmd, "log-json") {
		return corpuslog.NewJSONLogger(w, verbose)
	}
	return corpuslog.NewLogger(w, verbose)
}
