// Package project locates the target project: its root, its Go module and
// the layout of the registries the generator maintains.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleInfo contains information from go.mod
type ModuleInfo struct {
	Path      string // Module path (e.g., "github.com/user/repo")
	GoVersion string // Go version requirement (e.g., "1.21")
}

// DetectModule reads go.mod in rootPath and returns its module information.
func DetectModule(rootPath string) (*ModuleInfo, error) {
	modPath := filepath.Join(rootPath, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("go.mod not found in %s", rootPath)
		}
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	modFile, err := modfile.ParseLax(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if modFile.Module == nil || modFile.Module.Mod.Path == "" {
		return nil, fmt.Errorf("go.mod in %s has no module directive", rootPath)
	}

	info := &ModuleInfo{Path: modFile.Module.Mod.Path}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}
