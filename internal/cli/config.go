package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/pipeline"
)

// Config is the optional py2plan.toml file. Every key is optional;
// command-line flags override it.
//
//	out_dir = "build/plans"
//	func = "plan"
//	engine = "dot"
//	export_timeout = "10s"
//	max_source_bytes = 262144
//	rankdir = "LR"
//	strict_export = true
type Config struct {
	OutDir         string `toml:"out_dir"`
	Func           string `toml:"func"`
	Engine         string `toml:"engine"`
	ExportTimeout  string `toml:"export_timeout"`
	MaxSourceBytes int    `toml:"max_source_bytes"`
	Rankdir        string `toml:"rankdir"`
	StrictExport   bool   `toml:"strict_export"`
	YAML           bool   `toml:"yaml"`
}

// loadConfig reads the config file at path. With an empty path the
// default file in the working directory is used if it exists.
func loadConfig(path string) (Config, string, error) {
	explicit := path != ""
	if !explicit {
		path = configFileName
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Config{}, "", nil
		}
		return Config{}, path, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, path, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, path, nil
}

// apply fills options not set on the command line from the config.
// changed reports whether a flag was given explicitly.
func (cfg Config) apply(opts *pipeline.Options, changed func(flag string) bool) error {
	if !changed("out") && cfg.OutDir != "" {
		opts.OutDir = cfg.OutDir
	}
	if !changed("func") && cfg.Func != "" {
		opts.Function = cfg.Func
	}
	if !changed("engine") && cfg.Engine != "" {
		opts.Engine = cfg.Engine
	}
	if !changed("timeout") && cfg.ExportTimeout != "" {
		d, err := time.ParseDuration(cfg.ExportTimeout)
		if err != nil || d <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "invalid export_timeout %q", cfg.ExportTimeout)
		}
		opts.Timeout = d
	}
	if !changed("rankdir") && cfg.Rankdir != "" {
		opts.Rankdir = cfg.Rankdir
	}
	if !changed("strict-export") && cfg.StrictExport {
		opts.StrictExport = true
	}
	if !changed("yaml") && cfg.YAML {
		opts.YAML = true
	}
	if cfg.MaxSourceBytes != 0 {
		opts.MaxSourceBytes = cfg.MaxSourceBytes
	}
	return nil
}
