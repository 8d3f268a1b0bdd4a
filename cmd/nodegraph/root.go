package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/adapters/file"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/spf13/cobra"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "nodegraph",
	Short: "nodegraph edits and evaluates procedural node graphs",
	Long: `nodegraph loads node networks from YAML or JSON documents, flattens them
into executable graphs and evaluates them. It can also serve documents over
HTTP or the Model Context Protocol for interactive editing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(name)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the graph documents")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
}

func newLoader(cmd *cobra.Command, catalog *registry.Registry) *file.Loader {
	dir, _ := cmd.Flags().GetString("dir")
	return file.New(dir, file.WithCatalog(catalog), file.WithLogger(logger))
}

func openDocument(cmd *cobra.Command, name string, opts ...nodegraph.Option) (*nodegraph.Document, error) {
	catalog := registry.Builtin()
	opts = append([]nodegraph.Option{nodegraph.WithCatalog(catalog), nodegraph.WithLogger(logger)}, opts...)
	return nodegraph.Open(cmd.Context(), newLoader(cmd, catalog), name, opts...)
}

func componentLogger(component string) *slog.Logger {
	return logger.With("component", component)
}
