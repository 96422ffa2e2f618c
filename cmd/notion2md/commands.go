package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sleroq/notion2md/internal/app/effects"
	"github.com/sleroq/notion2md/internal/app/exporter"
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [root]",
		Short: "Render a page or database from a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Root = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := exporter.Exporter{Config: a.cfg, Progress: os.Stderr}.Run(ctx)
			if err != nil {
				return err
			}
			printExportSummary(res)
			return nil
		},
	}
	exportFlags(cmd)
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [root]",
		Short: "Parse a snapshot and assemble its tree without writing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Root = args[0]
			}
			summary, err := exporter.Validate(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s %s\n", okStyle.Render("✓ valid"), summary.Title, dimStyle.Render("("+summary.Root.String()+")"))
			fmt.Fprintf(os.Stderr, "  pages: %d  databases: %d  blocks: %d\n", summary.Pages, summary.Databases, summary.Blocks)
			fmt.Fprintf(os.Stderr, "  tree nodes: %d  embedded databases: %d\n", summary.Nodes, summary.Embedded)
			printWarnings(summary.Warnings)
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Export again whenever the snapshot changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Root = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exp := exporter.Exporter{Config: a.cfg}
			return exp.Watch(ctx, debounce, func(res exporter.Result, err error) {
				if err != nil {
					logrus.WithError(err).Error("export failed")
					return
				}
				printExportSummary(res)
			})
		},
	}
	exportFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", exporter.DefaultWatchDebounce, "wait this long after a change before exporting")
	return cmd
}

func printExportSummary(res exporter.Result) {
	dests := make([]string, 0, res.Plan.Len())
	for _, op := range res.Plan.Operations {
		switch op := op.(type) {
		case effects.WriteFile:
			dests = append(dests, op.Path)
		case effects.CopyToClipboard:
			dests = append(dests, "clipboard")
		case effects.PrintToStdout:
			dests = append(dests, "stdout")
		}
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n",
		okStyle.Render("✓ exported"),
		res.Root.Title(),
		dimStyle.Render(fmt.Sprintf("(%d nodes, %d bytes → %s)", res.Nodes, len(res.Content), strings.Join(dests, ", "))),
	)
	printWarnings(res.Warnings)
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, warnStyle.Render("  ! "+w))
	}
}
