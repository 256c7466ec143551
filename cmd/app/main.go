package main

import (
	"flag"
	"fmt"
	"log/slog"
	"lox/internal/evaluator"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
	"lox/internal/repl"
	"lox/internal/resolver"
	"lox/internal/util"
	"os"
	"path/filepath"
)

const (
	// Sysexits-style codes: static errors are EX_DATAERR, runtime errors
	// are EX_SOFTWARE.
	exitStaticError  = 65
	exitRuntimeError = 70
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile string
	noResolve  bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.BoolVar(&noResolve, "no-resolve", false, "Skip the static resolver pass and rely on dynamic lookup")
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	config := util.Configuration{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    Commit,
		LogLevel:  logLevel,
		LogFile:   logFile,
		NoResolve: noResolve,
	}
	if configFile != "" {
		if err := util.LoadConfigFile(configFile, &config); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file '%s': %v\n", configFile, err)
			os.Exit(1)
		}
		// Explicit flags win over the config file.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "log-level":
				config.LogLevel = logLevel
			case "log-file":
				config.LogFile = logFile
			case "no-resolve":
				config.NoResolve = noResolve
			}
		})
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	os.Exit(runFile(flag.Arg(0), config))
}

func runFile(path string, config util.Configuration) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read '%s': %v\n", path, err)
		return 1
	}

	l := lexer.New(string(source))
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		for _, msg := range p.Errors() {
			fmt.Fprintf(os.Stderr, "parse error: %s\n", msg)
		}
		return exitStaticError
	}

	eval := evaluator.New(evaluator.NewStdoutPrinter())
	if !config.NoResolve {
		bindings, err := resolver.Resolve(program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve error: %v\n", err)
			return exitStaticError
		}
		eval = eval.WithResolutions(bindings)
	}

	result := eval.Eval(program, evaluator.NewRootEnvironment())
	if errObj, ok := result.(*object.Error); ok {
		fmt.Fprintln(os.Stderr, errObj.Inspect())
		return exitRuntimeError
	}
	return 0
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("lox version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: lox [options] [filename]

Options:
  -config <path>     Path to a TOML configuration file.
  -no-resolve        Skip the static resolver pass and rely on dynamic lookup.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the Lox programming language.

Examples:
  lox -log-level=debug          Start the REPL with debug logging enabled
  lox myfile.lox                Execute the provided Lox file

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
