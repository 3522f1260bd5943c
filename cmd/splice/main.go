package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/Veraticus/splice/pkg/config"
	"github.com/Veraticus/splice/pkg/types"
)

const version = "0.3.0"

// Exit codes
const (
	exitOK      = 0
	exitRuntime = 1
	exitStartup = 2
)

func main() {
	// Writes to a closed stdout fail with EPIPE instead of killing us, so a
	// reader going away ends the run with status 0
	signal.Ignore(syscall.SIGPIPE)

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options is the parsed command line before it is merged into the config
type options struct {
	profile    string
	repeated   *bool
	ignoreCase *bool
	follow     *bool
	stats      *bool
	help       bool
	version    bool
	positional []string
	command    []string
}

// repeatFlag backs both -l/--looped and -L/--not-looped. They share one
// destination so the flag given last wins.
type repeatFlag struct {
	dest  **bool
	value bool
}

func (f *repeatFlag) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		v := f.value
		*f.dest = &v
	}
	return nil
}

func (f *repeatFlag) String() string { return "false" }

func (f *repeatFlag) Type() string { return "bool" }

// newFlagSet defines the command-line flags
func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("splice", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)

	looped := fs.VarPF(&repeatFlag{dest: &opts.repeated, value: true}, "looped", "l", "Splice every region in the input, not just the first")
	looped.NoOptDefVal = "true"
	notLooped := fs.VarPF(&repeatFlag{dest: &opts.repeated, value: false}, "not-looped", "L", "Stop after the first region (default)")
	notLooped.NoOptDefVal = "true"

	fs.StringVarP(&opts.profile, "profile", "p", "", "Use the start/stop patterns of a configured profile")
	fs.BoolP("ignore-case", "i", false, "Match patterns case-insensitively")
	fs.BoolP("follow", "f", false, "Keep reading FILE as it grows, like tail -f")
	fs.BoolP("stats", "s", false, "Print a summary on stderr when done")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	return fs
}

// parseArgs parses the command line
func parseArgs(args []string) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := newFlagSet(opts)

	if err := fs.Parse(args); err != nil {
		return nil, fs, types.ConfigError("%v", err)
	}

	// Boolean flags only count when given, so config and env still apply
	for name, dest := range map[string]**bool{
		"ignore-case": &opts.ignoreCase,
		"follow":      &opts.follow,
		"stats":       &opts.stats,
	} {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*dest = &v
		}
	}

	needed := 2
	if opts.profile != "" {
		needed = 0
	}
	opts.positional, opts.command = splitCommand(fs.Args(), fs.ArgsLenAtDash(), needed)

	return opts, fs, nil
}

// splitCommand separates positional arguments from a trailing command. A
// "--" only starts a command once the patterns are given, so "--" can still
// be used to pass patterns that begin with a dash.
func splitCommand(rest []string, dash, needed int) ([]string, []string) {
	if dash >= needed {
		return rest[:dash], rest[dash:]
	}
	for i := needed; i < len(rest); i++ {
		if rest[i] == "--" {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, nil
}

// resolve merges the parsed options into the loaded configuration and
// compiles the patterns
func resolve(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	args := opts.positional
	if opts.profile != "" {
		if err := cfg.ApplyProfile(opts.profile); err != nil {
			return nil, err
		}
	} else {
		if len(args) < 2 {
			return nil, types.ConfigError("START and STOP patterns are required")
		}
		cfg.Start, cfg.Stop = args[0], args[1]
		args = args[2:]
	}

	switch len(args) {
	case 0:
	case 1:
		cfg.Input = args[0]
	default:
		return nil, types.ConfigError("unexpected argument %q", args[1])
	}
	if len(opts.command) > 0 {
		cfg.Command = opts.command
	}

	if opts.repeated != nil {
		cfg.Repeated = *opts.repeated
	}
	if opts.ignoreCase != nil {
		cfg.IgnoreCase = *opts.ignoreCase
	}
	if opts.follow != nil {
		cfg.Follow = *opts.follow
	} else if cfg.Follow && (cfg.Input == "" || cfg.Input == "-" || len(cfg.Command) > 0) {
		// follow from the config file only applies to a named file
		cfg.Follow = false
	}
	if opts.stats != nil {
		cfg.Stats = *opts.stats
	}

	if err := cfg.Compile(); err != nil {
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run is main without the process exit
func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "splice: %v\n", err)
		fmt.Fprintf(stderr, "Try 'splice --help' for more information.\n")
		return exitStartup
	}

	if opts.help {
		printUsage(stdout, fs)
		return exitOK
	}
	if opts.version {
		fmt.Fprintf(stdout, "splice %s\n", version)
		return exitOK
	}

	cfg, err := resolve(opts)
	if err != nil {
		fmt.Fprintf(stderr, "splice: %v\n", err)
		return exitStartup
	}

	if config.Debug() {
		fmt.Fprintf(stderr, "splice: start=%q stop=%q repeated=%v ignore_case=%v\n",
			cfg.Start, cfg.Stop, cfg.Repeated, cfg.IgnoreCase)
	}

	// Interrupting a followed file ends the input instead of killing us
	ctx := context.Background()
	if cfg.Follow {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	deps, err := NewDependencies(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "splice: %v\n", err)
		return exitStartup
	}
	defer func() { _ = deps.Close() }()

	app := NewApplication(deps)
	if err := app.Run(); err != nil {
		fmt.Fprintf(stderr, "splice: %v\n", err)
	}

	return app.ExitCode()
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "splice - print the regions of a text stream between two regular expressions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: splice [OPTIONS] START STOP [FILE]")
	fmt.Fprintln(w, "       splice [OPTIONS] --profile NAME [FILE]")
	fmt.Fprintln(w, "       splice [OPTIONS] START STOP -- COMMAND [ARGS...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A region opens on a line matching START and closes on the matching STOP.")
	fmt.Fprintln(w, "Nested STARTs need as many STOPs. FILE defaults to standard input.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  SPLICE_CONFIG       Path to config file")
	fmt.Fprintln(w, "  SPLICE_REPEATED     Splice every region (true/false)")
	fmt.Fprintln(w, "  SPLICE_IGNORE_CASE  Case-insensitive matching (true/false)")
	fmt.Fprintln(w, "  SPLICE_STATS        Print a summary when done (true/false)")
	fmt.Fprintln(w, "  SPLICE_DEBUG        Trace configuration and region events on stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/splice/config.yaml")
}
