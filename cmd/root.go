package cmd

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	bunyan "github.com/mumoshu/logrus-bunyan-formatter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	tread "github.com/treadproject/tread/pkg"
	"github.com/treadproject/tread/version"
)

type options struct {
	Key       string
	CheckOnly bool
	Vars      []string
	Envs      []string
	Verbose   int
	Quiet     bool
	Debug     bool
	Output    string
	Colorize  bool
	Timing    bool
}

func init() {
	log.SetOutput(os.Stdout)

	if err := tread.RegisterBuiltins(tread.DefaultRegistry); err != nil {
		panic(err)
	}
}

func updateLoggingConfiguration(o *options) error {
	if o.Debug {
		log.SetLevel(log.DebugLevel)
	} else if level, err := log.ParseLevel(viper.GetString("log_level")); err == nil {
		log.SetLevel(level)
	}

	commandName := path.Base(os.Args[0])
	switch o.Output {
	case "bunyan":
		log.SetFormatter(&bunyan.Formatter{Name: commandName})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{})
	case "message":
		log.SetFormatter(&tread.MessageOnlyFormatter{})
	default:
		return fmt.Errorf("unexpected output format specified: %s", o.Output)
	}

	return nil
}

// parseVar decodes one --var argument of the form "[type:]key=value" where
// type is one of str, int, or bool (long or short spellings).
func parseVar(arg string) (string, interface{}, error) {
	rest := arg
	typ := "str"
	if idx := strings.Index(arg, ":"); idx >= 0 && idx < strings.Index(arg+"=", "=") {
		typ = arg[:idx]
		rest = arg[idx+1:]
	}

	eq := strings.Index(rest, "=")
	if eq < 0 {
		return "", nil, fmt.Errorf("bad variable declaration %q: missing '='", arg)
	}
	key, raw := rest[:eq], rest[eq+1:]
	if key == "" {
		return "", nil, fmt.Errorf("bad variable declaration %q: missing key", arg)
	}

	switch typ {
	case "str", "string":
		return key, raw, nil
	case "int", "integer":
		v, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil, fmt.Errorf("bad variable declaration %q: %v", arg, err)
		}
		return key, v, nil
	case "bool", "boolean":
		return key, strings.ToLower(raw) == "true", nil
	default:
		return "", nil, fmt.Errorf("bad variable declaration %q: unknown type %q", arg, typ)
	}
}

func parseEnv(arg string) (string, string, error) {
	eq := strings.Index(arg, "=")
	if eq <= 0 {
		return "", "", fmt.Errorf("bad environment declaration %q", arg)
	}
	return arg[:eq], arg[eq+1:], nil
}

func newContext(o *options, cwd string) (*tread.Context, error) {
	verbose := tread.LevelInfo + o.Verbose
	if o.Quiet {
		verbose = tread.LevelQuiet
	}

	ctxt, err := tread.NewContext(verbose, o.Debug, cwd)
	if err != nil {
		return nil, err
	}

	for _, arg := range o.Vars {
		key, value, err := parseVar(arg)
		if err != nil {
			return nil, err
		}
		ctxt.Variables.SetValue(key, value)
	}

	for _, arg := range o.Envs {
		key, value, err := parseEnv(arg)
		if err != nil {
			return nil, err
		}
		ctxt.Environment.Set(key, value)
	}

	return ctxt, nil
}

func runTest(o *options, test, directory string) error {
	ctxt, err := newContext(o, directory)
	if err != nil {
		return err
	}

	steps, err := tread.ParseFile(ctxt, test, o.Key, nil)
	if err != nil {
		return err
	}
	ctxt.Steps = steps

	if o.CheckOnly {
		ctxt.Emit(fmt.Sprintf("%s parsed: %d steps", test, len(steps)), tread.LevelInfo, false)
		return nil
	}

	exts := tread.NewExtensionSet()
	if o.Timing {
		exts.Add(tread.NewTimingExtension())
	}

	runner := tread.NewRunner(exts, o.Colorize)
	return runner.Run(ctxt, steps)
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.Key, "key", "k", "", "Key to select steps from a mapping test file")
	fs.BoolVarP(&o.CheckOnly, "check", "K", false, "Parse the test file without running it")
	fs.StringArrayVarP(&o.Vars, "var", "V", nil, "Declare a variable as [type:]key=value; type is one of str|int|bool")
	fs.StringArrayVarP(&o.Envs, "env", "e", nil, "Declare an environment variable as key=value")
	fs.CountVarP(&o.Verbose, "verbose", "v", "Increase output verbosity")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "Suppress step output")
	fs.BoolVarP(&o.Debug, "debug", "d", false, "Enable debugging output")
	fs.StringVarP(&o.Output, "output", "o", "text", "Output format. One of: json|text|bunyan")
	fs.BoolVarP(&o.Colorize, "color", "C", true, "Colorize output")
	fs.BoolVar(&o.Timing, "timing", false, "Report per-step timing when the run finishes")
}

func NewRootCommand() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:           "tread TEST [DIRECTORY]",
		Short:         "Run a declarative test described as YAML steps",
		Version:       version.Get().Version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return updateLoggingConfiguration(o)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			directory := ""
			if len(args) > 1 {
				directory = args[1]
			}
			return runTest(o, args[0], directory)
		},
	}

	addFlags(rootCmd.Flags(), o)

	v := viper.GetViper()
	v.SetDefault("log_level", "info")
	v.SetConfigType("yaml")
	v.SetConfigName("tread")
	v.AddConfigPath(".")
	if err := v.MergeInConfig(); err == nil {
		log.Debugf("loading config file tread.yaml...done")
	}

	v.SetEnvPrefix("TREAD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return rootCmd
}

// MustRun executes the root command, printing the failure and exiting
// non-zero when the run does not succeed.
func MustRun() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
