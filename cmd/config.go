package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lowc/report"

	"github.com/pelletier/go-toml"
)

// ConfigFileName is the name of the build configuration file looked up in the
// working directory when no configuration path is given.
const ConfigFileName = "lowc.toml"

// tomlConfig represents a build configuration as it is encoded in TOML.
type tomlConfig struct {
	LLCPath      string `toml:"llc-path"`
	LLVMConfig   string `toml:"llvm-config"`
	TargetTriple string `toml:"target-triple"`
	Output       string `toml:"output"`
	LogLevel     string `toml:"log-level"`
}

// BuildConfig is the validated build configuration.
type BuildConfig struct {
	// LLCPath is the path to `llc`.  It is empty until the backend is first
	// needed: see ResolveLLC.
	LLCPath string

	// LLVMConfigPath is the path to `llvm-config` used to locate `llc`.
	LLVMConfigPath string

	// TargetTriple is set on the generated module if non-empty.
	TargetTriple string

	// OutputPath is the default output path.
	OutputPath string

	// LogLevel must be one of the enumerated log levels of package report.
	LogLevel int
}

// DefaultConfig returns the configuration used when no configuration file
// exists.
func DefaultConfig() *BuildConfig {
	return &BuildConfig{
		LLVMConfigPath: "llvm-config",
		OutputPath:     "a.o",
		LogLevel:       report.LogLevelVerbose,
	}
}

// LoadConfig loads the configuration file at path.  If path is empty, the
// default configuration file is loaded from the working directory if it
// exists.
func LoadConfig(path string) (*BuildConfig, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}

		return nil, fmt.Errorf("unable to open config file at `%s`: %s", path, err)
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading config file at `%s`: %s", path, err)
	}

	return parseConfig(buff, filepath.Dir(path))
}

// parseConfig decodes and validates the contents of a configuration file.
// Relative tool paths are resolved against dir.
func parseConfig(buff []byte, dir string) (*BuildConfig, error) {
	tc := &tomlConfig{}
	if err := toml.Unmarshal(buff, tc); err != nil {
		return nil, fmt.Errorf("error parsing config file: %s", err)
	}

	cfg := DefaultConfig()

	if tc.LogLevel != "" {
		level, ok := report.ParseLogLevel(tc.LogLevel)
		if !ok {
			return nil, fmt.Errorf("invalid log level `%s`", tc.LogLevel)
		}

		cfg.LogLevel = level
	}

	if tc.LLCPath != "" {
		cfg.LLCPath = resolveToolPath(dir, tc.LLCPath)
	}

	if tc.LLVMConfig != "" {
		cfg.LLVMConfigPath = resolveToolPath(dir, tc.LLVMConfig)
	}

	if tc.Output != "" {
		cfg.OutputPath = tc.Output
	}

	cfg.TargetTriple = tc.TargetTriple
	return cfg, nil
}

// resolveToolPath makes a tool path containing a separator relative to dir.
// Bare tool names are left to be looked up on the PATH.
func resolveToolPath(dir, path string) string {
	if filepath.IsAbs(path) || !strings.ContainsAny(path, `/\`) {
		return path
	}

	return filepath.Join(dir, path)
}

// -----------------------------------------------------------------------------

// ResolveLLC determines the path to `llc`.  An explicitly configured path is
// used as is.  Otherwise, the binary directory reported by `llvm-config` is
// searched and finally the PATH.
func (cfg *BuildConfig) ResolveLLC() (string, error) {
	if cfg.LLCPath != "" {
		return cfg.LLCPath, nil
	}

	if out, err := exec.Command(cfg.LLVMConfigPath, "--bindir").Output(); err == nil {
		candidate := filepath.Join(strings.TrimSpace(string(out)), "llc")
		if _, err := os.Stat(candidate); err == nil {
			cfg.LLCPath = candidate
			return candidate, nil
		}
	}

	path, err := exec.LookPath("llc")
	if err != nil {
		return "", errors.New("unable to locate llc: set `llc-path` in " + ConfigFileName + " or add llc to the PATH")
	}

	cfg.LLCPath = path
	return path, nil
}
