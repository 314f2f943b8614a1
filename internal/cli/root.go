package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the folio CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (paginate,
// render, watch), loads configuration, configures logging based on the
// --verbose flag, and executes the command tree under ctx. Cancelling ctx
// stops long-running commands such as watch.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var cfgFile string

	root := &cobra.Command{
		Use:           "folio",
		Short:         "Folio computes page breaks for flowing block documents",
		Long:          `Folio measures the blocks of an HTML, Markdown, or EPUB document, partitions them into fixed-size pages without ever splitting a block, and can proof-render the result to PDF or repaginate live as the document changes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			level := charmlog.InfoLevel
			if viper.GetBool("verbose") {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("folio %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .folio.yaml in the working directory or $HOME)")
	root.PersistentFlags().String("page", "letter", "page size: letter, legal, tabloid, or a4")
	root.PersistentFlags().Float64("margin", 96, "page margin in pixels, applied to all four sides")

	// Flags win over environment variables, which win over the config file.
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("page.size", root.PersistentFlags().Lookup("page"))
	_ = viper.BindPFlag("page.margin", root.PersistentFlags().Lookup("margin"))

	root.AddCommand(newPaginateCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newWatchCmd())

	return root.ExecuteContext(ctx)
}

// initConfig wires viper: an explicit config file when given, otherwise
// .folio.yaml found in the working directory or $HOME, plus FOLIO_-prefixed
// environment variables. A missing config file is not an error.
func initConfig(cfgFile string) error {
	setConfigDefaults()

	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".folio")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// setConfigDefaults registers the default value for every config key.
func setConfigDefaults() {
	viper.SetDefault("verbose", false)
	viper.SetDefault("page.size", "letter")
	viper.SetDefault("page.margin", 96.0)
	viper.SetDefault("measure.font_size", 16.0)
	viper.SetDefault("measure.line_height", 1.5)
	viper.SetDefault("watch.interval", "16ms")
}

// pageSizes maps --page values to their geometry.
var pageSizes = map[string]model.PageSpec{
	"letter":  model.Letter,
	"legal":   model.Legal,
	"tabloid": model.Tabloid,
	"a4":      model.A4,
}

// pageFromConfig resolves the configured page size and margin into a page
// spec, rejecting combinations that leave no room for content.
func pageFromConfig() (model.PageSpec, error) {
	name := strings.ToLower(viper.GetString("page.size"))
	spec, ok := pageSizes[name]
	if !ok {
		return model.PageSpec{}, fmt.Errorf("unknown page size %q (choose letter, legal, tabloid, or a4)", name)
	}

	margin := viper.GetFloat64("page.margin")
	if margin < 0 {
		return model.PageSpec{}, fmt.Errorf("page margin %g is negative", margin)
	}
	spec = spec.WithMargin(margin)
	if spec.Capacity() <= 0 {
		return model.PageSpec{}, fmt.Errorf("margin %g leaves no content height on %s pages", margin, name)
	}

	return spec, nil
}

// measureFromConfig builds the measurement options for the given page from
// the configured font size and line height.
func measureFromConfig(page model.PageSpec) measure.Config {
	cfg := measure.DefaultConfig()
	cfg.ContentWidth = page.ContentWidth()
	cfg.BaseFontSize = viper.GetFloat64("measure.font_size")
	cfg.LineHeight = viper.GetFloat64("measure.line_height")
	return cfg
}

// openDocument picks the reader for path by format, detected from the
// extension and, failing that, the content.
func openDocument(path string) (*folio.Paginator, error) {
	f, err := format.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting format of %s: %w", path, err)
	}

	switch f {
	case format.HTML:
		return folio.FromHTML(path), nil
	case format.Markdown:
		return folio.FromMarkdown(path), nil
	case format.EPUB:
		return folio.FromEPUB(path), nil
	default:
		return nil, fmt.Errorf("unsupported document type %q (want HTML, Markdown, or EPUB)", filepath.Ext(path))
	}
}
