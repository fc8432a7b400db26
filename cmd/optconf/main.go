// FILE: lixenwraith/config/cmd/optconf/main.go

// optconf resolves a reference option set from the command line, the
// environment, INI files and the OS keyring, then prints the result with the
// source of every value.
//
//	APP_XENV=10 optconf api --xarg=2 @test.arg --ini test.ini
//	<Config xpos=api, xarg=2, xenv=10, xfarg=30, xini=50, gini=10, karg=13, ...>
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/config/keyringstore"
)

const namespace = "app"

// referenceOptions mirrors a typical application: one option per source
func referenceOptions() []config.Option {
	return []config.Option{
		{Flags: []string{"xpos"}, Help: "positional argument", Nargs: config.NargsOptional, Default: "all", Env: "APP_XPOS"},
		{Flags: []string{"--xarg"}, Help: "optional argument", Default: "1", Type: config.Int, Env: "APP_XARG"},
		{Flags: []string{"--xenv"}, Help: "environment argument", Default: "1", Type: config.Int, Env: "APP_XENV"},
		{Flags: []string{"--xfarg"}, Help: "@file argument", Default: "1", Type: config.Int, Env: "APP_XFARG"},
		{Flags: []string{"--xini"}, Help: "ini argument", Default: "1", Type: config.Int, INISection: "app", Env: "APP_XINI"},
		{Flags: []string{"--gini"}, Help: "global ini argument", Default: "1", Type: config.Int, Env: "APP_GINI"},
		{Flags: []string{"--karg"}, Help: "secret keyring arg", Default: "-1", Type: config.Int},
		{Flags: []string{"--key"}, Help: "key value", Type: config.KeyFormat, ExclusiveGroup: "key", Dest: "key", Env: "APP_KEY"},
		{Flags: []string{"--key-file"}, Help: "file to read the key from", Type: config.ReadFile, ExclusiveGroup: "key", Dest: "key", NoSecret: true},

		{Flags: []string{"--format", "-o"}, Help: "output format: text, toml, yaml or json", Default: "text", NoSecret: true},
		{Flags: []string{"--no-keyring"}, Help: "skip the OS keyring", Switch: true, NoSecret: true},
		{Flags: []string{"--debug"}, Help: "log resolution steps", Switch: true, NoSecret: true},
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optconf [xpos] [flags] [@argfile ...]",
		Short: "Resolve the reference configuration and print it",
		Long: `Resolve the reference option set from all sources and print it.

Precedence, highest first: command line, environment, OS keyring (service
"app"), INI files. INI candidates are /etc/xdg/app/app.ini,
~/.config/app/app.ini, ./app.ini, $APP_INI and --ini PATH.`,
		// Arguments go through the option schema, not cobra's flag set
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(slices.Contains(args, "--debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	builder := config.NewBuilder(referenceOptions()...).
		WithProg("optconf").
		WithArgs(args).
		WithLogger(logger).
		WithINIDiscovery(config.DefaultINIDiscoveryOptions(namespace))
	if !slices.Contains(args, "--no-keyring") {
		builder = builder.WithSecretStore(keyringstore.New(), namespace)
	}

	cfg, err := builder.BuildContext(cmd.Context())
	if err != nil {
		if config.IsHelp(err) {
			usage, uerr := builder.Usage()
			if uerr != nil {
				return uerr
			}
			fmt.Fprint(cmd.OutOrStdout(), usage)
			return nil
		}
		return err
	}

	format, _ := cfg.GetString("format")
	if format != "text" {
		return cfg.Export(format, cmd.OutOrStdout())
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg)
	for _, key := range cfg.Keys() {
		if src, _ := cfg.Source(key); src != config.SourceDefault {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\t%s\n", key, src)
		}
	}
	if rest := builder.PassThrough(); len(rest) > 0 {
		logger.Info("Unparsed arguments", zap.Strings("args", rest))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "optconf: %v\n", err)
		os.Exit(1)
	}
}
