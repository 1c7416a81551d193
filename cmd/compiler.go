package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lowc/generate"
	"lowc/report"
	"lowc/syntax"

	"github.com/cespare/xxhash/v2"
	"github.com/llir/llvm/ir"
)

// Enumeration of possible output formats.
const (
	FormatObj = iota
	FormatAsm
	FormatIR
)

// Compiler represents the state of a single compilation.
type Compiler struct {
	// srcPath is the path to the source file as given by the user.
	srcPath string

	// srcAbsPath is the absolute path to the source file.
	srcAbsPath string

	// cfg is the build configuration.
	cfg *BuildConfig

	// format must be one of the enumerated output formats.
	format int

	// outputPath is the path the output is written to.
	outputPath string
}

// NewCompiler creates a new compiler for the source file at srcPath.
func NewCompiler(srcPath string, cfg *BuildConfig, format int, outputPath string) *Compiler {
	srcAbsPath, err := filepath.Abs(srcPath)
	if err != nil {
		report.ReportFatal("error calculating absolute path: %s", err.Error())
		return nil
	}

	return &Compiler{
		srcPath:    srcPath,
		srcAbsPath: srcAbsPath,
		cfg:        cfg,
		format:     format,
		outputPath: outputPath,
	}
}

// Compile runs every phase of compilation.  Errors are reported as they
// occur.  It returns whether compilation succeeded.
func (c *Compiler) Compile() bool {
	mod, err := c.generate()
	if err == nil {
		report.ReportBeginPhase("Emitting")
		err = c.emit(mod)
	}

	if err != nil {
		report.ReportCompileError(c.srcPath, err)
		return false
	}

	report.ReportEndPhase()
	return true
}

// generate parses the source file and generates and verifies its module.
func (c *Compiler) generate() (*ir.Module, error) {
	report.ReportBeginPhase("Parsing")

	file, err := os.Open(c.srcAbsPath)
	if err != nil {
		return nil, report.Raise(report.SourceUnreadable, "failed to open source file: %s", err)
	}
	defer file.Close()

	g := generate.NewGenerator(filepath.Base(c.srcPath))
	if c.cfg.TargetTriple != "" {
		g.SetTargetTriple(c.cfg.TargetTriple)
	}

	p := syntax.NewParser(bufio.NewReader(file), g)
	if err := p.Parse(); err != nil {
		return nil, err
	}

	report.ReportBeginPhase("Verifying")
	return g.Finish()
}

// emit writes the module to the output in the selected format.
func (c *Compiler) emit(mod *ir.Module) error {
	if c.format == FormatIR {
		return writeOutputFile(c.outputPath, mod.String())
	}

	llcPath, err := c.cfg.ResolveLLC()
	if err != nil {
		return report.Raise(report.ToolchainFailed, "%s", err)
	}

	// llc reads textual IR from an intermediate file
	llPath := intermediatePath(c.srcAbsPath)
	if err := writeOutputFile(llPath, mod.String()); err != nil {
		return err
	}
	defer os.Remove(llPath)

	filetype := "obj"
	if c.format == FormatAsm {
		filetype = "asm"
	}

	return runLLC(llcPath, filetype, llPath, c.outputPath)
}

// intermediatePath returns the path of the intermediate IR file for the source
// file at srcAbsPath.  It is unique per source file so concurrent builds of
// different files do not collide.
func intermediatePath(srcAbsPath string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("lowc-%016x.ll", xxhash.Sum64String(srcAbsPath)))
}

// runLLC compiles the IR file at llPath to outPath using `llc`.
func runLLC(llcPath, filetype, llPath, outPath string) error {
	llc := exec.Command(llcPath, "-filetype="+filetype, "-o", outPath, llPath)
	stderrBuff := bytes.Buffer{}
	llc.Stderr = &stderrBuff

	if err := llc.Run(); err != nil {
		msg := strings.TrimSpace(stderrBuff.String())
		if msg == "" {
			msg = err.Error()
		}

		return report.Raise(report.ToolchainFailed, "failed to run llc:\n%s", msg)
	}

	return nil
}

// writeOutputFile is used to quickly write an output file for the compiler.
func writeOutputFile(fpath, content string) error {
	// open or create the file
	file, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return report.Raise(report.OutputFailed, "failed to open output file `%s`: %s", fpath, err)
	}
	defer file.Close()

	// write the data
	if _, err = file.WriteString(content); err != nil {
		return report.Raise(report.OutputFailed, "failed to write output to file `%s`: %s", fpath, err)
	}

	return nil
}
