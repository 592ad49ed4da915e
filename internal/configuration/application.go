// Package configuration handles the layered application configuration:
// baked-in defaults, generic KEY=VALUE environment files and optional
// YAML/JSON override files, merged in that order of precedence.
package configuration

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/codec"
	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"gopkg.in/yaml.v3"
)

// Recognized environment file keys.
const (
	// SettingBasePath names the base directory a session manages.
	SettingBasePath = "FSM_BASE_PATH"

	// SettingDirMode holds the octal default permission set for created
	// directories.
	SettingDirMode = "FSM_DIR_MODE"

	// SettingFileMode holds the octal default permission set for created
	// files.
	SettingFileMode = "FSM_FILE_MODE"

	// SettingTemporary marks the whole session as scoped for removal.
	SettingTemporary = "FSM_TEMPORARY"

	// SettingRandPrefix roots the session inside a randomized directory
	// underneath the base path.
	SettingRandPrefix = "FSM_RAND_PREFIX"

	// SettingRootBound allows navigation to any directory of the
	// hierarchy.
	SettingRootBound = "FSM_ROOT_BOUND"

	// SettingHashAlgorithm names the default digest algorithm.
	SettingHashAlgorithm = "FSM_HASH_ALGORITHM"

	// SettingDocumentName names the structure document inside the base
	// path.
	SettingDocumentName = "FSM_DOCUMENT_NAME"
)

// AppConfiguration is the principal structure holding the application
// configuration: the session defaults a frontend opens its session with.
type AppConfiguration struct {
	BasePath     string
	DirMode      fs.FileMode
	FileMode     fs.FileMode
	Temporary    bool
	RandPrefix   bool
	RootBound    bool
	Algorithm    hashsum.Algorithm
	DocumentName string
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] with
// all default values.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		DirMode:      schema.DefaultDirMode,
		FileMode:     schema.DefaultFileMode,
		Algorithm:    hashsum.DefaultAlgorithm,
		DocumentName: codec.StructureFile,
	}
}

// Override uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. The mode fields unmarshal
// from integers (YAML understands octal literals like 0o750).
type Override struct {
	BasePath     *string            `yaml:"base_path,omitempty" json:"base_path,omitempty"`
	DirMode      *fs.FileMode       `yaml:"dir_mode,omitempty" json:"dir_mode,omitempty"`
	FileMode     *fs.FileMode       `yaml:"file_mode,omitempty" json:"file_mode,omitempty"`
	Temporary    *bool              `yaml:"temporary,omitempty" json:"temporary,omitempty"`
	RandPrefix   *bool              `yaml:"rand_prefix,omitempty" json:"rand_prefix,omitempty"`
	RootBound    *bool              `yaml:"root_bound,omitempty" json:"root_bound,omitempty"`
	Algorithm    *hashsum.Algorithm `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	DocumentName *string            `yaml:"document_name,omitempty" json:"document_name,omitempty"`
}

// Merge applies non-nil values of an [Override] onto the configuration,
// preserving everything the override leaves unset.
func (c *AppConfiguration) Merge(override *Override) {
	if override.BasePath != nil {
		c.BasePath = *override.BasePath
	}
	if override.DirMode != nil {
		c.DirMode = override.DirMode.Perm()
	}
	if override.FileMode != nil {
		c.FileMode = override.FileMode.Perm()
	}
	if override.Temporary != nil {
		c.Temporary = *override.Temporary
	}
	if override.RandPrefix != nil {
		c.RandPrefix = *override.RandPrefix
	}
	if override.RootBound != nil {
		c.RootBound = *override.RootBound
	}
	if override.Algorithm != nil {
		c.Algorithm = *override.Algorithm
	}
	if override.DocumentName != nil {
		c.DocumentName = *override.DocumentName
	}
}

// OverrideFromEnv maps the recognized keys of a read environment map onto
// an [Override], so that environment files merge like any other override
// layer. Absent keys stay unset; unparseable modes are treated as absent.
func (h *Handler) OverrideFromEnv(envMap map[string]string) *Override {
	override := &Override{}

	if value, exists := envMap[SettingBasePath]; exists {
		override.BasePath = &value
	}
	if _, exists := envMap[SettingDirMode]; exists {
		if mode := h.MapKeyToFileMode(envMap, SettingDirMode); mode != 0 {
			override.DirMode = &mode
		}
	}
	if _, exists := envMap[SettingFileMode]; exists {
		if mode := h.MapKeyToFileMode(envMap, SettingFileMode); mode != 0 {
			override.FileMode = &mode
		}
	}
	if _, exists := envMap[SettingTemporary]; exists {
		value := h.MapKeyToBool(envMap, SettingTemporary)
		override.Temporary = &value
	}
	if _, exists := envMap[SettingRandPrefix]; exists {
		value := h.MapKeyToBool(envMap, SettingRandPrefix)
		override.RandPrefix = &value
	}
	if _, exists := envMap[SettingRootBound]; exists {
		value := h.MapKeyToBool(envMap, SettingRootBound)
		override.RootBound = &value
	}
	if value, exists := envMap[SettingHashAlgorithm]; exists {
		algorithm := hashsum.Algorithm(strings.ToLower(value))
		override.Algorithm = &algorithm
	}
	if value, exists := envMap[SettingDocumentName]; exists {
		override.DocumentName = &value
	}

	return override
}

// LoadOverrideFile loads configuration overrides from a file without
// merging. YAML (.yaml, .yml) and JSON (.json) formats are supported.
func LoadOverrideFile(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("(config-override) %w", err)
	}

	var override Override

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("(config-override) %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("(config-override) %w", err)
		}
	default:
		return nil, fmt.Errorf("(config-override) %w: %q", ErrUnknownFormat, path)
	}

	return &override, nil
}
