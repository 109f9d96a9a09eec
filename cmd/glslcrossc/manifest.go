package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const noManifestMessage = "no glslcross.toml found\nplease run inside a project, or compile a pair explicitly, e.g.:\n  glslcrossc compile shader.vert shader.frag"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig  `toml:"package"`
	Output  outputConfig   `toml:"output"`
	Shaders []shaderConfig `toml:"shader"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type outputConfig struct {
	Dir     string `toml:"dir"`
	Dialect string `toml:"dialect"`
	Reflect bool   `toml:"reflect"`
}

type shaderConfig struct {
	Name     string `toml:"name"`
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "glslcross.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if len(cfg.Shaders) == 0 {
		return projectConfig{}, fmt.Errorf("%s: no [[shader]] entries", path)
	}
	for i, shader := range cfg.Shaders {
		if strings.TrimSpace(shader.Name) == "" {
			return projectConfig{}, fmt.Errorf("%s: [[shader]] entry %d is missing name", path, i)
		}
		if strings.TrimSpace(shader.Vertex) == "" || strings.TrimSpace(shader.Fragment) == "" {
			return projectConfig{}, fmt.Errorf("%s: shader %q needs both vertex and fragment paths", path, shader.Name)
		}
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "out"
	}
	if cfg.Output.Dialect == "" {
		cfg.Output.Dialect = "gl430"
	}
	if _, err := parseDialect(cfg.Output.Dialect); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [output].dialect: %w", path, err)
	}
	return cfg, nil
}
