// Package paths provides directory paths for dossier.
//
// Config lives in ~/.config/dossier and data (invocation history) in
// ~/.local/share/dossier. On Windows both live under %LOCALAPPDATA%\dossier.
// When running from a source checkout, data goes to {repo}/.dossier instead.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const appName = "dossier"

// RootEnv points at a dossier content checkout. It is used to locate the
// workflow schema.
const RootEnv = "DOSSIER_ROOT"

var (
	devRoot     string
	devRootOnce sync.Once
)

// IsDevMode returns true if dossier is running from a source checkout.
func IsDevMode() bool {
	return getDevRoot() != ""
}

// DevRoot returns the repository root if running in dev mode, or empty string otherwise.
func DevRoot() string {
	return getDevRoot()
}

// getDevRoot finds the repository root by walking up from the executable,
// then from the working directory, looking for the dossier go.mod.
func getDevRoot() string {
	devRootOnce.Do(func() {
		if root := findDevRootFrom(executableDir()); root != "" {
			devRoot = root
			return
		}
		if wd, err := os.Getwd(); err == nil {
			devRoot = findDevRootFrom(wd)
		}
	})
	return devRoot
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

const modulePath = "module github.com/liberioai/dossier"

// findDevRootFrom walks up from startDir looking for a go.mod declaring the
// dossier module.
func findDevRootFrom(startDir string) string {
	if startDir == "" {
		return ""
	}

	dir := startDir
	for {
		if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
			content := string(data)
			if strings.HasPrefix(content, modulePath) ||
				strings.Contains(content, "\n"+modulePath) {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func windowsBase() string {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		home, _ := os.UserHomeDir()
		localAppData = filepath.Join(home, "AppData", "Local")
	}
	return filepath.Join(localAppData, appName)
}

// DataDir returns the data directory for dossier.
//
// Dev mode: {repo}/.dossier
// Unix: ~/.local/share/dossier (XDG compliant)
// Windows: %LOCALAPPDATA%\dossier
func DataDir() string {
	if root := getDevRoot(); root != "" {
		return filepath.Join(root, "."+appName)
	}
	if runtime.GOOS == "windows" {
		return windowsBase()
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigDir returns the config directory for dossier. It is the global user
// directory even in dev mode.
//
// Unix: ~/.config/dossier
// Windows: %LOCALAPPDATA%\dossier
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return windowsBase()
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigFile returns the path to the main config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// HistoryDB returns the default invocation history database path.
func HistoryDB() string {
	return filepath.Join(DataDir(), "history.db")
}

// DefaultSchemaPath returns the first existing workflows/workflow-schema.json
// under $DOSSIER_ROOT, the dev checkout, or the working directory. It
// returns "" when none exists.
func DefaultSchemaPath() string {
	var bases []string
	if env := strings.TrimSpace(os.Getenv(RootEnv)); env != "" {
		bases = append(bases, env)
	}
	if root := getDevRoot(); root != "" {
		bases = append(bases, root)
	}
	if wd, err := os.Getwd(); err == nil {
		bases = append(bases, wd)
	}

	for _, base := range bases {
		p := filepath.Join(base, "workflows", "workflow-schema.json")
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
