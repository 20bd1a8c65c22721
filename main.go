package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/githttp"
	"github.com/cdk2git/cdk2git/internal/synth"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	overrides := internal.DefaultConfig()

	root := &cobra.Command{
		Use:           "cdk2git",
		Short:         "Serve synthesized CDKTF output as clonable git repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := internal.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				config.ListenAddr = overrides.ListenAddr
			}
			if cmd.Flags().Changed("project-root") {
				config.ProjectRoot = overrides.ProjectRoot
			}
			if cmd.Flags().Changed("branch") {
				config.Branch = overrides.Branch
			}
			if cmd.Flags().Changed("debug") {
				config.Debug = overrides.Debug
			}
			if err := config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(config)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	root.Flags().StringVar(&overrides.ListenAddr, "listen", overrides.ListenAddr, "listen address")
	root.Flags().StringVar(&overrides.ProjectRoot, "project-root", overrides.ProjectRoot, "directory containing project directories")
	root.Flags().StringVar(&overrides.Branch, "branch", overrides.Branch, "branch name advertised to clients")
	root.Flags().BoolVar(&overrides.Debug, "debug", false, "enable debug logging")

	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cdk2git %s\n", internal.Version)
		},
	}
}

func run(config internal.Config) error {
	logger, err := internal.NewLogger(config.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cleanupMgr := internal.NewCleanupManager(logger)
	defer cleanupMgr.Execute()

	var synthesizer synth.Synthesizer
	switch config.Synth.Mode {
	case "docker":
		runner, err := synth.NewDefaultDockerRunner(config.Synth)
		if err != nil {
			return fmt.Errorf("failed to create docker synthesis runner: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
		}
		cleanupMgr.Add("docker-client", runner.Close)
		synthesizer = runner
	default:
		runner, err := synth.NewExecRunner(config.Synth)
		if err != nil {
			return fmt.Errorf("failed to create synthesis runner: %w", err)
		}
		synthesizer = runner
	}

	server, err := githttp.NewServer(config, synthesizer, logger)
	if err != nil {
		return fmt.Errorf("failed to start git server on %q: %w", config.ListenAddr, err)
	}
	cleanupMgr.Add("git-server", server.Close)

	logger.Info("cdk2git listening",
		zap.Int("port", server.Port()),
		zap.String("project_root", config.ProjectRoot),
		zap.String("branch", config.Branch),
		zap.String("synth_mode", config.Synth.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
