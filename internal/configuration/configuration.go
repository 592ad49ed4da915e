package configuration

import (
	"io/fs"
	"strconv"
	"strings"
)

// envMapProvider is the reading side of a KEY=VALUE environment file
// source.
type envMapProvider interface {
	Read(filenames ...string) (map[string]string, error)
}

// Handler is the principal implementation structure for reading generic
// KEY=VALUE configuration files and mapping their values onto types.
type Handler struct {
	EnvReader envMapProvider
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(reader envMapProvider) *Handler {
	return &Handler{
		EnvReader: reader,
	}
}

func (h *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return h.EnvReader.Read(filenames...)
}

func (h *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

func (h *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := h.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}

func (h *Handler) MapKeyToBool(envMap map[string]string, key string) bool {
	switch strings.ToLower(h.MapKeyToString(envMap, key)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MapKeyToFileMode parses an octal permission string ("750") into a file
// mode, with zero signaling an absent or unparseable value.
func (h *Handler) MapKeyToFileMode(envMap map[string]string, key string) fs.FileMode {
	value := h.MapKeyToString(envMap, key)
	if value == "" {
		return 0
	}
	modeValue, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0
	}

	return fs.FileMode(modeValue).Perm()
}
