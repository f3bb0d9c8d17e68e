// Package launch starts DCC applications with the shot context in their
// environment.
package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/config"
	"github.com/dmitrijs2005/orion/internal/filex"
	"github.com/dmitrijs2005/orion/internal/layout"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/models"
)

// Variables exported to every application.
const (
	EnvRoot          = "ORI_ROOT_PATH"
	EnvShot          = "ORI_SHOT_CONTEXT"
	EnvShotPath      = "ORI_SHOT_PATH"
	EnvFrameStart    = "ORI_SHOT_FRAME_START"
	EnvFrameEnd      = "ORI_SHOT_FRAME_END"
	EnvDiscordThread = "ORI_DISCORD_THREAD_ID"
	EnvPythonPath    = "PYTHONPATH"
)

// Context is what the launched application is working on. Shot may be nil.
type Context struct {
	Root    string
	Shot    *models.Shot
	ShotDir string
	File    string
}

// PrefsDir is <root>/60_config/softwarePrefs/<software>.
func PrefsDir(root, software string) string {
	return filepath.Join(root, layout.ConfigDir, "softwarePrefs", strings.ToLower(software))
}

// BuildEnv returns base (KEY=VALUE entries) with the orion variables and the
// software's own settings applied, sorted by key. Software values may
// reference other variables as $NAME or ${NAME}.
func BuildEnv(base []string, software string, sw config.SoftwareConfig, c Context) []string {
	env := make(map[string]string, len(base)+8)
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}

	env[EnvRoot] = c.Root
	if c.Shot != nil {
		env[EnvShot] = c.Shot.Code
		env[EnvShotPath] = c.ShotDir
		env[EnvFrameStart] = strconv.Itoa(c.Shot.FrameStart)
		env[EnvFrameEnd] = strconv.Itoa(c.Shot.FrameEnd)
		env[EnvDiscordThread] = c.Shot.DiscordThreadID
	}
	prepend(env, EnvPythonPath, filepath.Join(PrefsDir(c.Root, software), "python"))

	expand := func(s string) string {
		return os.Expand(s, func(k string) string { return env[k] })
	}
	for _, k := range sortedKeys(sw.Env) {
		env[k] = expand(sw.Env[k])
	}
	for _, k := range sortedKeys(sw.PathEnv) {
		prepend(env, k, expand(sw.PathEnv[k]))
	}

	out := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func prepend(env map[string]string, key, value string) {
	if old := env[key]; old != "" {
		env[key] = value + string(os.PathListSeparator) + old
		return
	}
	env[key] = value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// startProcess starts cmd and lets it outlive orion.
var startProcess = func(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// Launcher starts configured applications.
type Launcher struct {
	root     string
	software map[string]config.SoftwareConfig
	log      logging.Logger
}

func NewLauncher(root string, software map[string]config.SoftwareConfig, log logging.Logger) *Launcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Launcher{root: root, software: software, log: log}
}

// Names lists the configured applications.
func (l *Launcher) Names() []string {
	names := make([]string, 0, len(l.software))
	for k := range l.software {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (l *Launcher) lookup(name string) (string, config.SoftwareConfig, bool) {
	if sw, ok := l.software[name]; ok {
		return name, sw, true
	}
	for k, sw := range l.software {
		if strings.EqualFold(k, name) {
			return k, sw, true
		}
	}
	return "", config.SoftwareConfig{}, false
}

// Launch starts the named application without waiting for it.
func (l *Launcher) Launch(ctx context.Context, name string, c Context) (*exec.Cmd, error) {
	key, sw, ok := l.lookup(name)
	if !ok {
		return nil, fmt.Errorf("software %q: %w", name, common.ErrorNotFound)
	}
	if sw.Executable == "" {
		return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: "launch", Path: key, Err: fmt.Errorf("no executable configured")}
	}
	if c.Root == "" {
		c.Root = l.root
	}

	args := append([]string{}, sw.Args...)
	if c.File != "" {
		args = append(args, c.File)
	}
	cmd := exec.Command(sw.Executable, args...)
	cmd.Env = BuildEnv(os.Environ(), key, sw, c)
	if c.ShotDir != "" && filex.IsDir(c.ShotDir) {
		cmd.Dir = c.ShotDir
	}

	if err := startProcess(cmd); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", key, err)
	}
	l.log.Info(ctx, "application started", "software", key, "executable", sw.Executable)
	return cmd, nil
}
