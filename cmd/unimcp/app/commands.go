// Package app provides the entry point for the unimcp command-line application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quortexio/unimcp/pkg/apispec"
	"github.com/quortexio/unimcp/pkg/config"
	"github.com/quortexio/unimcp/pkg/logger"
	"github.com/quortexio/unimcp/pkg/server"
)

var rootCmd = &cobra.Command{
	Use:               "unimcp",
	DisableAutoGenTag: true,
	Short:             "Unified API MCP gateway - Expose OpenAPI services as a single MCP server",
	Long: `unimcp merges a directory of OpenAPI documents into one unified API surface
and serves it over the Model Context Protocol. It provides:

- Multi-document OpenAPI merging with deterministic conflict handling
- HTTP operations mapped to MCP tools, resources, and resource templates
- Automatic bearer credential refresh against the API's token endpoint
- Organization parameter redaction with server-side injection
- Streamable HTTP and stdio transports

Configuration is read from QUORTEX_* and MCP_* environment variables; serve
flags override the listen address and spec directory.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the unimcp CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// newServeCmd creates the serve command for starting the gateway
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the unified API MCP gateway",
		Long: `Start the gateway: load and merge the OpenAPI documents, build the MCP
capability catalog, and listen for MCP client connections. With --stdio the
gateway speaks MCP over stdin/stdout instead of HTTP.`,
		RunE: runServe,
	}

	cmd.Flags().String("host", "", "Bind address (overrides MCP_HOST)")
	cmd.Flags().Int("port", 0, "Bind port (overrides MCP_PORT)")
	cmd.Flags().String("spec-dir", "", "OpenAPI document directory (overrides QUORTEX_API_SPEC_DIR)")
	cmd.Flags().Bool("stdio", false, "Serve MCP over stdio instead of HTTP")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display version information for unimcp",
		Run: func(_ *cobra.Command, _ []string) {
			// Version information will be injected at build time
			logger.Infof("unimcp version: %s", getVersion())
		},
	}
}

// newValidateCmd creates the validate command for checking the spec directory
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the OpenAPI spec directory",
		Long: `Load, merge, and validate the OpenAPI documents without starting a server.

This command checks:
- YAML syntax validity of every document
- Mergeability of the document set
- Configuration validity (listen address, endpoint path, URLs)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(cmd)

			if err := config.NewValidator().Validate(cfg); err != nil {
				logger.Errorf("Configuration validation failed: %v", err)
				return fmt.Errorf("validation failed: %w", err)
			}

			logger.Infof("Validating spec directory: %s", cfg.SpecDir)

			docs, err := apispec.LoadDir(cfg.SpecDir)
			if err != nil {
				logger.Errorf("Failed to load specs: %v", err)
				return fmt.Errorf("spec loading failed: %w", err)
			}

			merged := apispec.MergeAll(docs)

			logger.Infof("✓ Spec directory is valid")
			logger.Infof("  Documents: %d", len(docs))
			logger.Infof("  Paths: %d", len(merged.Paths()))
			logger.Infof("  Components: %d", len(merged.Components()))

			return nil
		},
	}

	cmd.Flags().String("spec-dir", "", "OpenAPI document directory (overrides QUORTEX_API_SPEC_DIR)")

	return cmd
}

// getVersion returns the version string (will be set at build time)
func getVersion() string {
	// This will be replaced with actual version info using ldflags
	return "dev"
}

// loadConfig assembles the configuration from the environment and applies any
// flag overrides set on the command.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv()

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("spec-dir") {
		cfg.SpecDir, _ = cmd.Flags().GetString("spec-dir")
	}

	return cfg
}

// runServe implements the serve command logic
func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadConfig(cmd)

	logger.Infof("Loading specs from: %s", cfg.SpecDir)

	srv, err := server.New(ctx, cfg, getVersion())
	if err != nil {
		logger.Errorf("Failed to build server: %v", err)
		return fmt.Errorf("server construction failed: %w", err)
	}

	if stdio, _ := cmd.Flags().GetBool("stdio"); stdio {
		return srv.ServeStdio(ctx)
	}

	return srv.Serve(ctx)
}
