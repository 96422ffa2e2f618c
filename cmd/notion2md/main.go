package main

import (
	"fmt"
	"os"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sleroq/notion2md/internal/config"
	"github.com/sleroq/notion2md/internal/logging"
)

type app struct {
	v          *viper.Viper
	configPath string
	cfg        config.Config
}

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		if goerrors.IsCategory(err, goerrors.CategoryValidation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{v: config.New()}
}

func (a *app) rootCmd() *cobra.Command {
	d := config.Defaults()

	rootCmd := &cobra.Command{
		Use:   "notion2md",
		Short: "Convert fetched Notion pages and databases to Markdown",
		Example: `notion2md export -i ./snapshot -o plan.md
notion2md export -i ./snapshot https://www.notion.so/Plan-0123456789abcdef0123456789abcdef --clipboard
notion2md validate -i ./snapshot
notion2md watch -i ./snapshot -o plan.md`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.DefaultConfigName+".yaml)")
	flags.StringP(config.KeyInput, "i", d.Input, "snapshot directory of fetched Notion JSON")
	flags.StringP(config.KeyRoot, "r", d.Root, "root page or database id or URL (default: snapshot manifest root)")
	flags.Int(config.KeyMaxDepth, d.MaxDepth, "maximum block nesting depth, 0 for unlimited")
	flags.Int(config.KeyMaxNodes, d.MaxNodes, "maximum number of nodes in one tree, 0 for unlimited")
	flags.String(config.KeyLogLevel, d.LogLevel, "log level: trace, debug, info, warn, error")
	flags.String(config.KeyLogFormat, d.LogFormat, "log format: text or json")

	rootCmd.AddCommand(newExportCmd(a), newValidateCmd(a), newWatchCmd(a))
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
	return rootCmd
}

// load binds the running command's flags, which include the inherited
// persistent ones, then reads file and env.
func (a *app) load(cmd *cobra.Command) error {
	bindFlags(a.v, cmd.Flags())
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// bindFlags makes every named flag a viper key, so flags override env and file.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// exportFlags registers the rendering and delivery flags shared by export and watch.
func exportFlags(cmd *cobra.Command) {
	d := config.Defaults()
	flags := cmd.Flags()
	flags.StringP(config.KeyOutput, "o", d.Output, "write the result to this file")
	flags.StringP(config.KeyFormat, "f", d.Format, "output format: markdown or html")
	flags.StringP(config.KeyTemplate, "t", d.Template, "prompt template file")
	flags.String(config.KeyInstruction, d.Instruction, "instructions passed to the prompt template")
	flags.Bool(config.KeyClipboard, d.Clipboard, "copy the result to the clipboard")
	flags.Bool(config.KeyStdout, d.Stdout, "print the result to stdout")
	flags.Bool(config.KeyIncludeProperties, d.IncludeProperties, "render page properties")
	flags.Bool(config.KeyIncludeMetadata, d.IncludeMetadata, "render page id and URL")
	flags.Bool(config.KeyEnableSanitization, d.EnableSanitization, "strip reserved tags from rendered text")
	flags.Bool(config.KeyEnableParallel, d.EnableParallel, "render sibling blocks concurrently")
	flags.Int(config.KeyConcurrency, d.Concurrency, "parallel rendering limit per level, 0 for unlimited")
}
