package configuration

import (
	"fmt"

	"github.com/joho/godotenv"
)

// EnvFileProvider reads KEY=VALUE environment files through the
// godotenv library.
type EnvFileProvider struct{}

// Read parses the given environment files into one flat map.
func (*EnvFileProvider) Read(filenames ...string) (map[string]string, error) {
	envMap, err := godotenv.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(config-envfile) %w", err)
	}

	return envMap, nil
}
