package registry

import (
	"fmt"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/romilpunetha/tao/internal/astutil"
)

// Manifest is the Thrift build manifest.
type Manifest struct {
	Out         string   `yaml:"out,omitempty"`
	ThriftFiles []string `yaml:"thrift_files"`
}

// ParseManifest decodes a manifest document.
func ParseManifest(content []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

// Verify checks that a patched document is still well formed. Go files must
// parse; YAML manifests must decode.
func Verify(doc *Document) error {
	switch filepath.Ext(doc.Path) {
	case ".go":
		if err := astutil.ValidateSyntax([]byte(doc.Content)); err != nil {
			return fmt.Errorf("patched %s is not valid Go: %w", doc.Path, err)
		}
	case ".yml", ".yaml":
		if _, err := ParseManifest([]byte(doc.Content)); err != nil {
			return fmt.Errorf("patched %s: %w", doc.Path, err)
		}
	}
	return nil
}

// VerifyManifest checks that the manifest lists every path in want.
func VerifyManifest(content []byte, want ...string) error {
	m, err := ParseManifest(content)
	if err != nil {
		return err
	}
	for _, p := range want {
		if !slices.Contains(m.ThriftFiles, p) {
			return fmt.Errorf("manifest does not list %s", p)
		}
	}
	return nil
}
