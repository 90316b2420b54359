package cliapp

import (
	"github.com/spf13/cobra"
)

const versionString = "1.0.0"
const defaultConfigPath = "./semresolve.toml"

type cliOptions struct {
	configPath string
	verbose    bool
	workers    int
	noUsages   bool
	filter     string
	ui         bool
	from       string
}

// newRootCommand builds the command tree. Every subcommand's RunE gets the
// shared options through the closure.
func newRootCommand(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "semresolve",
		Short:         "Resolve types, overrides and call targets in Java sources",
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Worker pool size (overrides config)")
	root.PersistentFlags().BoolVar(&opts.noUsages, "no-usages", false, "Skip the call resolution pass")
	root.PersistentFlags().StringVar(&opts.filter, "filter", "", "Glob over method names selecting methods for the override pass")

	analyze := &cobra.Command{
		Use:   "analyze [root...]",
		Short: "Run all passes once and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	watch := &cobra.Command{
		Use:   "watch [root...]",
		Short: "Re-run the analysis whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}
	watch.Flags().BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")

	subtype := &cobra.Command{
		Use:   "subtype <ancestor> <descendant>",
		Short: "Report whether descendant is a subtype of ancestor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtype(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}

	resolve := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Qualify a type name as seen from inside a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}
	resolve.Flags().StringVar(&opts.from, "from", "", "Qualified name of the type the name is written in")
	_ = resolve.MarkFlagRequired("from")

	overridden := &cobra.Command{
		Use:   "overridden <type> <method>",
		Short: "Report whether the methods with this name override an ancestor method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverridden(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}

	usages := &cobra.Command{
		Use:   "usages <type> <method>",
		Short: "List call sites bound to the methods with this name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsages(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}

	history := &cobra.Command{
		Use:   "history [signature]",
		Short: "Show the latest stored run, or one method's stored results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var signature string
			if len(args) == 1 {
				signature = args[0]
			}
			return runHistory(cmd.Context(), cmd.OutOrStdout(), opts, signature)
		},
	}

	root.AddCommand(analyze, watch, subtype, resolve, overridden, usages, history)
	return root
}
