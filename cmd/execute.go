package cmd

import (
	"os"

	"lowc/report"

	"github.com/ComedicChimera/olive"
)

// Execute is the main entry point for the `lowc` CLI utility.
func Execute() {
	// set up the argument parser
	cli := olive.NewCLI("lowc", "lowc compiles a source file to LLVM IR, assembly or an object file", true)
	cli.AddFlag("asm", "S", "emit assembly instead of an object file")
	cli.AddFlag("raw", "r", "emit textual LLVM IR instead of an object file")
	cli.AddStringArg("output", "o", "the path to write the output to", false)
	cli.AddStringArg("config", "c", "the path to the build configuration file", false)
	cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	cli.AddPrimaryArg("source", "the path to the source file to compile", true)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.ReportFatal("usage error: %s", err.Error())
	}

	format := FormatObj
	if result.HasFlag("asm") {
		if result.HasFlag("raw") {
			report.ReportFatal("usage error: -S and -r cannot be used together")
		}

		format = FormatAsm
	} else if result.HasFlag("raw") {
		format = FormatIR
	}

	configPath := ""
	if arg, ok := result.Arguments["config"]; ok {
		configPath = arg.(string)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		report.ReportFatal("%s", err.Error())
	}

	// the command line log level overrides the configured one
	if arg, ok := result.Arguments["loglevel"]; ok {
		cfg.LogLevel, _ = report.ParseLogLevel(arg.(string))
	}

	outputPath := cfg.OutputPath
	if arg, ok := result.Arguments["output"]; ok {
		outputPath = arg.(string)
	}

	srcPath, _ := result.PrimaryArg()

	report.InitReporter(cfg.LogLevel)

	c := NewCompiler(srcPath, cfg, format, outputPath)
	c.Compile()

	// display the concluding message of compilation.
	report.ReportCompilationFinished(outputPath)

	if report.AnyErrors() {
		os.Exit(1)
	}
}
