// Package deps locates the external binaries the pipeline shells out to and
// reports on them.
package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"factreel/config"
)

type DependencyTier string

const (
	DependencyTierMust     DependencyTier = "must"
	DependencyTierShould   DependencyTier = "should"
	DependencyTierOptional DependencyTier = "optional"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceConfig   DependencySource = "config"
	DependencySourceLookPath DependencySource = "lookpath"
)

// ErrMissingRequired is returned by CheckRequired when a must-tier binary
// cannot be used.
var ErrMissingRequired = errors.New("required dependency unavailable")

type DependencySpec struct {
	ID      string
	Name    string
	Command string
	Tier    DependencyTier
	// ConfiguredPath overrides the PATH lookup when set.
	ConfiguredPath string
	Hint           string
}

type DependencyState struct {
	DependencySpec
	ResolvedPath string
	Status       DependencyStatus
	Source       DependencySource
	Error        string
}

type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
	}
}

func (r PathResolver) Resolve(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec, Source: DependencySourceLookPath}

	var (
		resolved string
		err      error
	)
	if configured := strings.TrimSpace(spec.ConfiguredPath); configured != "" {
		state.Source = DependencySourceConfig
		resolved, err = r.resolveConfiguredPath(configured)
		if err != nil {
			resolved = configured
			if absPath, absErr := r.AbsPath(configured); absErr == nil {
				resolved = absPath
			}
		}
	} else {
		resolved, err = r.LookPath(spec.Command)
	}

	state.ResolvedPath = resolved
	switch {
	case err == nil:
		state.Status = DependencyStatusOK
	case isMissingPathError(err):
		state.Status = DependencyStatusMissing
		state.Error = err.Error()
	default:
		state.Status = DependencyStatusError
		state.Error = err.Error()
	}
	return state
}

func (r PathResolver) resolveConfiguredPath(configuredPath string) (string, error) {
	if resolvedPath, err := r.LookPath(configuredPath); err == nil {
		return resolvedPath, nil
	}

	absPath, err := r.AbsPath(configuredPath)
	if err != nil {
		return "", err
	}
	if _, err = r.Stat(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func ResolveDependencyStates(specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, 0, len(specs))
	for _, spec := range specs {
		resolved = append(resolved, resolver.Resolve(spec))
	}
	return resolved
}

// ResolveDependencyInventory resolves the inventory for conf on the real PATH.
func ResolveDependencyInventory(conf *config.Config) []DependencyState {
	return ResolveDependencyStates(BuildDependencyInventory(conf.TtsProvider, conf.Tts.EdgeTtsPath), NewPathResolver())
}

// BuildDependencyInventory lists ffmpeg and ffprobe as required and edge-tts
// as recommended only when it is the narration provider.
func BuildDependencyInventory(ttsProvider, edgeTtsPath string) []DependencySpec {
	edgeTier := DependencyTierOptional
	edgeHint := "Only needed when tts_provider is edge-tts or an edge voice is configured."
	if strings.ToLower(strings.TrimSpace(ttsProvider)) == config.ProviderEdgeTts {
		edgeTier = DependencyTierShould
		edgeHint = "Current narration provider is edge-tts; install it with `pip install edge-tts`."
	}

	return []DependencySpec{
		{
			ID:      "ffmpeg",
			Name:    "ffmpeg",
			Command: "ffmpeg",
			Tier:    DependencyTierMust,
			Hint:    "Required for audio decoding, clip preparation and rendering.",
		},
		{
			ID:      "ffprobe",
			Name:    "ffprobe",
			Command: "ffprobe",
			Tier:    DependencyTierMust,
			Hint:    "Required to measure narration and background clip durations.",
		},
		{
			ID:             "edge-tts",
			Name:           "edge-tts",
			Command:        "edge-tts",
			Tier:           edgeTier,
			ConfiguredPath: edgeTtsPath,
			Hint:           edgeHint,
		},
	}
}

// CheckRequired fails when any must-tier dependency is not usable.
func CheckRequired(states []DependencyState) error {
	var missing []string
	for _, s := range states {
		if s.Tier == DependencyTierMust && s.Status != DependencyStatusOK {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	var builder strings.Builder
	builder.WriteString("Dependency status")

	for _, state := range states {
		resolvedPath := strings.TrimSpace(state.ResolvedPath)
		if resolvedPath == "" {
			resolvedPath = "unknown"
		}

		fmt.Fprintf(&builder, "\n- %s [%s]: %s | path=%s | source=%s",
			state.Name, strings.ToUpper(string(state.Tier)), state.Status, resolvedPath, state.Source)
		if state.Error != "" {
			builder.WriteString("\n  error: " + state.Error)
		}
		if state.Hint != "" && state.Status != DependencyStatusOK {
			builder.WriteString("\n  hint: " + state.Hint)
		}
	}

	return builder.String()
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
