// Package manifest handles walc.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "walc.toml"

// Defaults applied to keys the file leaves out.
const (
	DefaultEncoding  = "utf-8"
	DefaultAddr      = "localhost:4567"
	DefaultVerbosity = 1
)

// Manifest represents a walc.toml project configuration.
type Manifest struct {
	Project Project      `toml:"project"`
	Source  Source       `toml:"source"`
	Image   ImageConfig  `toml:"image"`
	Server  ServerConfig `toml:"server"`
	Log     LogConfig    `toml:"log"`

	// Dir is the directory containing the walc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs     []string `toml:"dirs"`
	Entry    string   `toml:"entry"`
	Encoding string   `toml:"encoding"` // WHATWG label, e.g. "utf-8", "shift_jis"
}

// ImageConfig configures compiled chunk output.
type ImageConfig struct {
	Output        string `toml:"output"`
	IncludeSource bool   `toml:"include-source"`
}

// ServerConfig configures the evaluation service.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	History string `toml:"history"` // SQLite run history; empty disables it
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no walc.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults(toml.MetaData{})
	return m
}

// Load parses and validates a walc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: cannot read %s: %w", path, err)
	}
	return parse(data, dir, path)
}

func parse(data []byte, dir, path string) (*Manifest, error) {
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("manifest: invalid %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("manifest: parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("manifest: cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults(md)
	return &m, nil
}

func (m *Manifest) applyDefaults(md toml.MetaData) {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Encoding == "" {
		m.Source.Encoding = DefaultEncoding
	}
	if m.Server.Addr == "" {
		m.Server.Addr = DefaultAddr
	}
	if !md.IsDefined("log", "verbosity") {
		m.Log.Verbosity = DefaultVerbosity
	}
}

// FindAndLoad walks up from startDir to find a walc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// resolve makes p absolute relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.resolve(d))
	}
	return paths
}

// EntryPath returns the absolute path of the entry source file, or "".
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Source.Entry)
}

// ImageOutputPath returns the absolute path chunks are written to, or "".
func (m *Manifest) ImageOutputPath() string {
	return m.resolve(m.Image.Output)
}

// HistoryPath returns the absolute path of the run history database, or "".
func (m *Manifest) HistoryPath() string {
	return m.resolve(m.Server.History)
}

// LogFilePath returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	return m.resolve(m.Log.File)
}
