// Package config loads forge.yaml project configuration with FORGE_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the project directory.
const FileName = "forge"

const EnvPrefix = "FORGE"

type Config struct {
	ProjectDir string `mapstructure:"project_dir"`
	// TargetsDir and BuildRoot are relative to ProjectDir unless absolute.
	TargetsDir string        `mapstructure:"targets_dir"`
	BuildRoot  string        `mapstructure:"build_root"`
	Target     string        `mapstructure:"target"`
	Strict     bool          `mapstructure:"strict"`
	Install    InstallConfig `mapstructure:"install"`
	Server     ServerConfig  `mapstructure:"server"`
}

type InstallConfig struct {
	Prefix  string `mapstructure:"prefix"`
	Sysroot string `mapstructure:"sysroot"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func Defaults() Config {
	return Config{
		ProjectDir: ".",
		TargetsDir: filepath.Join("meta", "targets"),
		BuildRoot:  filepath.Join(".forge", "build"),
		Target:     "host",
		Install:    InstallConfig{Prefix: "/"},
		Server:     ServerConfig{Addr: ":8080"},
	}
}

// SetDefaults registers every key so env overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("project_dir", d.ProjectDir)
	v.SetDefault("targets_dir", d.TargetsDir)
	v.SetDefault("build_root", d.BuildRoot)
	v.SetDefault("target", d.Target)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("install.prefix", d.Install.Prefix)
	v.SetDefault("install.sysroot", d.Install.Sysroot)
	v.SetDefault("server.addr", d.Server.Addr)
}

// Options controls where Load looks. Fs defaults to the OS filesystem.
type Options struct {
	Fs afero.Fs
	// File is an explicit config file; when empty FileName is searched in Dir.
	File string
	Dir  string
}

// Load reads configuration into v and unmarshals it. A missing config file is
// not an error; an unreadable or malformed one is.
func Load(v *viper.Viper, opts Options) (Config, error) {
	if opts.Fs != nil {
		v.SetFs(opts.Fs)
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.ProjectDir == "." && opts.Dir != "" {
		cfg.ProjectDir = opts.Dir
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string
	if c.ProjectDir == "" {
		problems = append(problems, "project_dir is required")
	}
	if c.TargetsDir == "" {
		problems = append(problems, "targets_dir is required")
	}
	if c.BuildRoot == "" {
		problems = append(problems, "build_root is required")
	}
	if c.Install.Prefix != "" && !filepath.IsAbs(c.Install.Prefix) {
		problems = append(problems, fmt.Sprintf("install.prefix %q must be absolute", c.Install.Prefix))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TargetsPath is TargetsDir resolved against ProjectDir.
func (c Config) TargetsPath() string { return c.under(c.TargetsDir) }

// BuildPath is BuildRoot resolved against ProjectDir.
func (c Config) BuildPath() string { return c.under(c.BuildRoot) }

func (c Config) under(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectDir, p)
}
