package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sqfa/cli/cmd"
	"github.com/ardnew/sqfa/pkg"
)

// CLI is the top-level command-line interface for sqfa.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Lint    cmd.Lint    `cmd:"" default:"withargs" help:"Analyze source files and report diagnostics"`
	AST     cmd.AST     `cmd:"" name:"ast"         help:"Print the syntax tree of a source file"`
	Watch   cmd.Watch   `cmd:""                    help:"Analyze files again whenever they change"`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive analysis session"`
	Init    cmd.Init    `cmd:""                    help:"Write the current options to the configuration file"`
	Version cmd.Version `cmd:""                    help:"Print version information"`
}

// Run parses args and executes the selected command. The exit function is
// called by kong for --help and usage errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cmd.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(pkg.EnvPrefix()),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
