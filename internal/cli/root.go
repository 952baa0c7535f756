// Package cli is the histopath-mcp command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/histopath-mcp/internal/config"
	"github.com/ironsheep/histopath-mcp/internal/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type cliContextKey struct{}

// rootOptions holds the global flags.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

// cliContext carries the loaded configuration through the command tree.
type cliContext struct {
	Config     *config.Config
	Logger     logging.Logger
	ConfigPath string
	// Binds are the flag overrides, kept for config reloads.
	Binds []config.Bind
}

// NewRootCommand creates the root command. Without a subcommand it serves
// MCP on stdin and stdout, the same as "serve".
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serve := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "histopath-mcp",
		Short: "MCP server for histopathology point annotation",
		Long: "histopath-mcp serves an annotation session over the Model Context Protocol.\n" +
			"A client opens a tissue image, marks positive, negative and other nuclei,\n" +
			"and asks for proliferation, density and spatial distribution metrics.\n" +
			"The protocol runs on stdin and stdout; logs go to stderr.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serve)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	addServeFlags(cmd, serve)

	cmd.AddCommand(
		newServeCommand(),
		newAnalyzeCommand(),
		newVersionCommand(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	var binds []config.Bind
	if opts.LogLevel != "" {
		binds = append(binds, config.Override("log.level", opts.LogLevel))
	}

	cfg, err := config.LoadWith(opts.ConfigPath, binds...)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cc := &cliContext{
		Config:     cfg,
		Logger:     logger,
		ConfigPath: opts.ConfigPath,
		Binds:      binds,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))
	return nil
}

func getCLIContext(cmd *cobra.Command) (*cliContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cc, ok := ctx.Value(cliContextKey{}).(*cliContext)
	if !ok || cc == nil {
		return nil, errors.New("command context carries no configuration")
	}
	return cc, nil
}

// Execute runs the command tree with the process arguments.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintError writes err to the command's error stream.
func PrintError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
