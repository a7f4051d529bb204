// Package appdirs decides where factreel keeps its config, logs, rendered
// videos, run history and scratch downloads.
package appdirs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// PortableEnv keeps everything in a data dir next to the executable.
	PortableEnv = "FACTREEL_PORTABLE"
	// HomeEnv roots every directory under an explicit path.
	HomeEnv = "FACTREEL_HOME"

	appName        = "factreel"
	configFileName = "config.toml"
)

type Layout string

const (
	LayoutRelative Layout = "relative"
	LayoutPortable Layout = "portable"
	LayoutHome     Layout = "home"
	LayoutUser     Layout = "user"
)

type Paths struct {
	Layout     Layout
	ConfigDir  string
	ConfigFile string
	LogDir     string
	OutputDir  string
	CacheDir   string
}

type environment struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}

func Resolve() (Paths, error) {
	return resolve(environment{})
}

// resolve picks the layout: portable wins over an explicit home, Windows
// uses the per-user dirs, and everything else stays relative to the working
// directory.
func resolve(env environment) (Paths, error) {
	env = env.withDefaults()

	if isPortableEnabled(env.getenv(PortableEnv)) {
		executablePath, err := env.executable()
		if err != nil {
			return Paths{}, fmt.Errorf("locate executable: %w", err)
		}
		return rootedAt(LayoutPortable, filepath.Join(filepath.Dir(executablePath), "data")), nil
	}
	if home := strings.TrimSpace(env.getenv(HomeEnv)); home != "" {
		return rootedAt(LayoutHome, filepath.Clean(home)), nil
	}
	if env.goos == "windows" {
		return userDirs(env)
	}
	return rootedAt(LayoutRelative, ""), nil
}

func (env environment) withDefaults() environment {
	if env.goos == "" {
		env.goos = runtime.GOOS
	}
	if env.getenv == nil {
		env.getenv = os.Getenv
	}
	if env.executable == nil {
		env.executable = os.Executable
	}
	if env.userConfigDir == nil {
		env.userConfigDir = os.UserConfigDir
	}
	if env.userCacheDir == nil {
		env.userCacheDir = os.UserCacheDir
	}
	return env
}

func rootedAt(layout Layout, root string) Paths {
	configDir := filepath.Join(root, "config")
	return Paths{
		Layout:     layout,
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(root, "logs"),
		OutputDir:  filepath.Join(root, "output"),
		CacheDir:   filepath.Join(root, "cache"),
	}
}

func userDirs(env environment) (Paths, error) {
	configRoot, err := nonEmptyDir("user config", env.userConfigDir)
	if err != nil {
		return Paths{}, err
	}
	cacheRoot, err := nonEmptyDir("user cache", env.userCacheDir)
	if err != nil {
		return Paths{}, err
	}

	configDir := filepath.Join(configRoot, appName)
	dataDir := filepath.Join(cacheRoot, appName)
	return Paths{
		Layout:     LayoutUser,
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(dataDir, "logs"),
		OutputDir:  filepath.Join(dataDir, "output"),
		CacheDir:   filepath.Join(dataDir, "cache"),
	}, nil
}

func nonEmptyDir(name string, lookup func() (string, error)) (string, error) {
	dir, err := lookup()
	if err != nil {
		return "", fmt.Errorf("%s dir: %w", name, err)
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(name + " dir is empty")
	}
	return dir, nil
}

func isPortableEnabled(value string) bool {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
