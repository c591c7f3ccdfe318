package viewer

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Viewer opens images in an external image viewer
type Viewer struct {
	command string   // configured viewer command, empty for detection
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	goos     string
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// launchPath defines a single way to launch a viewer
type launchPath struct {
	path string   // Command path: "feh", "imv", or "open-a:Preview"
	args []string // Arguments placed before the target
}

// viewers registry - platform specific launch paths per viewer
var viewers = map[string]map[string][]launchPath{
	"feh": {
		"linux": {{path: "feh", args: []string{"--scale-down", "--auto-zoom"}}},
	},
	"imv": {
		"linux": {{path: "imv"}},
	},
	"eog": {
		"linux": {{path: "eog"}},
	},
	"sxiv": {
		"linux": {{path: "nsxiv"}, {path: "sxiv"}},
	},
	"preview": {
		"darwin": {{path: "open-a:Preview"}},
	},
}

// candidateViewers defines the preferred viewer order for each platform
var candidateViewers = map[string][]string{
	"darwin":  {"preview"},
	"linux":   {"imv", "feh", "sxiv", "eog"},
	"windows": {},
}

// New creates a viewer. An empty command enables detection.
func New(command string, args []string, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command:  command,
		args:     args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open shows target (a local path or URL)
func (v *Viewer) Open(target string) error {
	if target == "" {
		return fmt.Errorf("nothing to open")
	}

	// Tier 1: User configured a specific viewer
	if v.command != "" {
		args := append(append([]string{}, v.args...), target)
		v.logger.Info("launching viewer", "command", v.command, "args", args)
		return v.start(v.command, args...)
	}

	// Tier 2: Candidate chain
	if name, err := v.detectAndLaunch(target); err == nil {
		v.logger.Info("opened with detected viewer", "viewer", name)
		return nil
	}

	// Tier 3: System default
	return v.launchDefault(target)
}

func (v *Viewer) detectAndLaunch(target string) (string, error) {
	candidates, ok := candidateViewers[v.goos]
	if !ok {
		candidates = candidateViewers["linux"]
	}

	for _, name := range candidates {
		paths, ok := viewers[name][v.goos]
		if !ok {
			continue
		}
		for _, lp := range paths {
			err := v.tryLaunch(lp, target)
			if err == nil {
				return name, nil
			}
			v.logger.Debug("launch path not available", "viewer", name, "path", lp.path, "error", err)
		}
	}
	return "", fmt.Errorf("no candidate viewers found")
}

func (v *Viewer) tryLaunch(lp launchPath, target string) error {
	if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
		return v.start("open", "-a", app, target)
	}
	if _, err := v.lookPath(lp.path); err != nil {
		return err
	}
	args := append(append([]string{}, lp.args...), target)
	return v.start(lp.path, args...)
}

// launchDefault opens target using the system default handler
func (v *Viewer) launchDefault(target string) error {
	v.logger.Info("launching with system default", "os", v.goos, "target", target)

	switch v.goos {
	case "darwin":
		return v.start("open", target)
	case "windows":
		return v.start("cmd", "/c", "start", "", target)
	default:
		return v.start("xdg-open", target)
	}
}
