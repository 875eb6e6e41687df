package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/landokit/landokit/internal/buildinfo"
	"github.com/landokit/landokit/pkg/core"
	"github.com/landokit/landokit/pkg/dispatch"
	"github.com/landokit/landokit/pkg/manifest"
	tuimodel "github.com/landokit/landokit/pkg/tui/model"
)

var (
	toolFlag    string
	verboseFlag bool
	logFileFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "landokit",
	Short: "Control panel TUI for Lando development environments",
	Long:  "Landokit is a terminal control panel for Lando: list environments, discover projects, run lifecycle commands, open shells, and query databases.",
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&toolFlag, "tool", dispatch.DefaultTool, "lando executable to invoke")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log operations to stderr")
	rootCmd.Flags().StringVar(&logFileFlag, "log", "", "write operation logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	if verboseFlag {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher(logger *slog.Logger) *dispatch.Dispatcher {
	d := dispatch.New(dispatch.NewQueue(), logger)
	d.Tool = toolFlag
	return d
}

// --- Root: TUI ---

func runTUI(_ *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if logFileFlag != "" {
		f, err := os.OpenFile(logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	app := tuimodel.New(newDispatcher(logger))
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Shared helpers ---

// drainUntilTerminal streams LogChunk output to stdout and returns the
// operation's terminal outcome.
func drainUntilTerminal(d *dispatch.Dispatcher) (core.Outcome, error) {
	for {
		o, err := d.Queue().Next(context.Background())
		if err != nil {
			return nil, err
		}
		if chunk, ok := o.(core.LogChunk); ok {
			os.Stdout.Write(chunk.Data)
			continue
		}
		return o, nil
	}
}

func terminalToError(o core.Outcome) error {
	if f, ok := o.(core.Failure); ok {
		return fmt.Errorf("%s", f.Message)
	}
	return nil
}

// --- List ---

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known environments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d := newDispatcher(newLogger())
		d.ListApps()

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		if err := terminalToError(o); err != nil {
			return err
		}

		apps := o.(core.AppList).Apps
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(apps)
		}

		if len(apps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no environments")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %s\n", "NAME", "STATE", "LOCATION")
		for _, app := range apps {
			state := "stopped"
			if app.Running {
				state = "running"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %s\n", app.Name, state, app.Location)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

// --- Info ---

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Show the services of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDispatcher(newLogger())
		d.InspectProject(args[0])

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		if err := terminalToError(o); err != nil {
			return err
		}

		services := o.(core.ServiceInfo).Services
		if infoJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(services)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-10s %-10s %s\n", "SERVICE", "KIND", "VERSION", "INTERNAL")
		for _, svc := range services {
			internal := ""
			if svc.Internal != nil {
				internal = svc.Internal.Host + ":" + svc.Internal.Port
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-10s %-10s %s\n", svc.Service, svc.Kind, svc.Version, internal)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
}

// --- Run ---

var runCmd = &cobra.Command{
	Use:   "run <command> [path]",
	Short: "Run a lifecycle command (start, stop, restart, rebuild, poweroff)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		path := "."
		if len(args) > 1 {
			path = args[1]
		}

		d := newDispatcher(newLogger())
		d.RunLifecycle(args[0], path)

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		return terminalToError(o)
	},
}

// --- Shell ---

var (
	shellService string
	shellCommand string
)

var shellCmd = &cobra.Command{
	Use:   "shell [path]",
	Short: "Run a command inside a service",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		d := newDispatcher(newLogger())
		d.RunShell(shellService, path, shellCommand)

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		return terminalToError(o)
	},
}

func init() {
	shellCmd.Flags().StringVarP(&shellService, "service", "s", "appserver", "service to run inside")
	shellCmd.Flags().StringVarP(&shellCommand, "command", "c", "", "command to run")
	shellCmd.MarkFlagRequired("command")
}

// --- Query ---

var (
	queryService string
	queryText    string
)

var queryCmd = &cobra.Command{
	Use:   "query [path]",
	Short: "Run a query against a database service",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		d := newDispatcher(newLogger())
		d.RunQuery(queryService, path, queryText)

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		if err := terminalToError(o); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), o.(core.QueryResult).Text)
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryService, "service", "s", "database", "database service name")
	queryCmd.Flags().StringVarP(&queryText, "execute", "e", "", "query to execute")
	queryCmd.MarkFlagRequired("execute")
}

// --- Scan ---

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Discover Lando projects under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		d := newDispatcher(newLogger())
		d.Scan(root)

		o, err := drainUntilTerminal(d)
		if err != nil {
			return err
		}
		if err := terminalToError(o); err != nil {
			return err
		}

		paths := o.(core.ProjectsFound).Paths
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no projects found")
			return nil
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// --- Init ---

var (
	initName   string
	initOutput string
)

var initCmd = &cobra.Command{
	Use:   "init <recipe>",
	Short: "Generate a starter .lando.yml",
	Long:  "Available recipes: lamp, mean",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Scaffold(args[0], initName)
		if err != nil {
			return err
		}
		if errs := manifest.Validate(m); len(errs) > 0 {
			return fmt.Errorf("invalid manifest: %v", errs[0])
		}
		if err := manifest.Save(m, initOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (%s recipe)\n", initOutput, m.Recipe)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "my-app", "application name")
	initCmd.Flags().StringVar(&initOutput, "output", manifest.Filename, "output file path")
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "landokit %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}
