package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/agentfs"
	"github.com/mwantia/agentfs/cli/tui"
	"github.com/mwantia/agentfs/cmd"
	"github.com/mwantia/agentfs/cmd/builtin"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logFile    string
	demo       bool
)

var rootCmd = &cobra.Command{
	Use:   "agentfs-cli",
	Short: "Browse and edit an agentfs filesystem",
	Long: `Opens the filesystem described by --config (or AGENTFS_* variables) in an
interactive browser. Press ':' to run commands like 'grep' or 'edit'.`,
	SilenceUsage: true,
	RunE: func(c *cobra.Command, args []string) error {
		return withFileSystem(c.Context(), func(fs *agentfs.FileSystem, center *cmd.CommandCenter) error {
			model := tui.NewModel(c.Context(), fs, center, fs.Logger())

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err := p.Run()
			return err
		})
	},
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Run a single command and print its output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withFileSystem(c.Context(), func(fs *agentfs.FileSystem, center *cmd.CommandCenter) error {
			code, err := center.Execute(c.Context(), fs, c.OutOrStdout(), args...)
			if err != nil {
				return err
			}
			if code != 0 {
				return fmt.Errorf("command exited with code %d", code)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the agentfs YAML config")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "agentfs-cli.log"), "File receiving all log output")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "Seed the filesystem with sample files")

	rootCmd.AddCommand(execCmd)
}

func withFileSystem(ctx context.Context, fn func(*agentfs.FileSystem, *cmd.CommandCenter) error) error {
	cfg, err := agentfs.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if demo && len(cfg.Mounts) == 0 {
		cfg.Mounts = append(cfg.Mounts, agentfs.MountConfig{Path: "/memories/", Address: ":memory:"})
	}

	// The terminal belongs to the TUI, so logs only go to the file
	fs, err := agentfs.NewFromConfig(ctx, cfg, agentfs.WithNoTerminalLog(), agentfs.WithLogFile(logFile))
	if err != nil {
		return fmt.Errorf("failed to setup filesystem: %w", err)
	}
	defer fs.Close(ctx)

	if demo {
		if err := seedDemo(ctx, fs); err != nil {
			return err
		}
	}

	center := cmd.NewCommandCenter()
	if err := builtin.InitBuiltin(center); err != nil {
		return fmt.Errorf("failed to setup command center: %w", err)
	}

	return fn(fs, center)
}

// seedDemo fills fs with sample files
func seedDemo(ctx context.Context, fs *agentfs.FileSystem) error {
	files := map[string]string{
		"/home/user/documents/readme.txt": "Welcome to the agentfs demo!",
		"/home/user/documents/notes.txt":  "This is a sample file.",
		"/etc/config.conf":                "# Configuration file",
		"/var/log/system.log":             "System log entry 1\nSystem log entry 2",
		"/memories/agent.md":              "# Long term memory\n- prefers short answers",
	}

	for path, content := range files {
		if _, err := fs.Write(ctx, path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
