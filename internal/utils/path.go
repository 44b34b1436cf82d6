package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the config and data directories.
const AppName = "sylla"

// dictPatterns are the file globs recognized as phrase tables
var dictPatterns = []string{"*.txt", "*.tsv", "*.bin"}

// PathResolver resolves dictionary and config paths relative to the
// executable, the working directory and the user config directory
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execDir, err := GetExecutableDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
	}
	return filepath.Join(homeDir, ".config", AppName)
}

// ConfigDir returns the config directory
func (pr *PathResolver) ConfigDir() string { return pr.configDir }

// DictCandidates lists where a dictionary given as userPath may live,
// in order of preference
func (pr *PathResolver) DictCandidates(userPath string) []string {
	var candidates []string
	if filepath.IsAbs(userPath) {
		return append(candidates, userPath)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, userPath),
		filepath.Join(pr.configDir, userPath),
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)
	return candidates
}

// GetDictPath resolves the phrase table location. If no candidate holds a
// table, the first candidate is returned for error reporting.
func (pr *PathResolver) GetDictPath(userPath string) string {
	candidates := pr.DictCandidates(userPath)
	for _, path := range candidates {
		if IsValidDictPath(path) {
			log.Debugf("Found dictionary at: %s", path)
			return path
		}
		log.Debugf("Dictionary candidate not valid: %s", path)
	}
	return candidates[0]
}

// IsValidDictPath reports whether path is a table file or a directory
// holding at least one
func IsValidDictPath(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		return true
	}
	for _, pattern := range dictPatterns {
		if matches, err := filepath.Glob(filepath.Join(path, pattern)); err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}
