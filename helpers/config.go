package helpers

import (
	"os"
	"path/filepath"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"gopkg.in/yaml.v3"
)

// ReadYamlConfigFile loads the yaml file and applies defaults. The
// directory holding the file becomes RootWorkingDir.
func ReadYamlConfigFile(filename string) (*config.AppConfig, error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	appCnf := new(config.AppConfig)
	if err = yaml.Unmarshal(yamlFile, appCnf); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	appCnf.RootWorkingDir = filepath.Dir(abs)

	return config.New(appCnf)
}
