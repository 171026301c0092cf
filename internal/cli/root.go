// Package cli implements the anycodec command line tool.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/anycodec"
	"github.com/wippyai/anycodec/codec"
	"github.com/wippyai/anycodec/config"
	"github.com/wippyai/anycodec/handle"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "anycodec",
		Short: "Convert values between list text and typed values",
		Long: `anycodec packs list-structured text into typed values described by
type descriptors, extracts them back into canonical text, and prints or
parses the descriptors themselves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (YAML)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewPrintCommand(opts))
	cmd.AddCommand(NewPackCommand(opts))
	cmd.AddCommand(NewRoundtripCommand(opts))
	cmd.AddCommand(NewWitCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}

// setup loads the configuration and installs the package loggers.
func (o *RootOptions) setup(errOut io.Writer) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	o.cfg = cfg

	zc := cfg.ZapConfig()
	if o.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zc.EncoderConfig),
		zapcore.AddSync(errOut),
		zc.Level,
	)
	o.logger = zap.New(core)

	codec.SetLogger(o.logger.Named("codec"))
	handle.SetLogger(o.logger.Named("handle"))
	return nil
}

// session opens a session for the loaded configuration.
func (o *RootOptions) session() (*anycodec.Session, error) {
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Default()
	}
	return anycodec.New(cfg)
}
