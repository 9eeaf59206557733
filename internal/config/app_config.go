// Package config loads layered application configuration files that provide
// defaults for the dirclip commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/dirclip/internal/utils"
)

const (
	// GlobalConfigDirectoryName is the directory under the user's home that
	// holds the global configuration file.
	GlobalConfigDirectoryName = ".dirclip"
	// ConfigFileName is the configuration file name looked up globally and in
	// the working directory.
	ConfigFileName = ".dirclip.yaml"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Copy AggregationConfiguration `mapstructure:"copy"`
	Tree AggregationConfiguration `mapstructure:"tree"`
}

// AggregationConfiguration defines defaults shared by the copy and tree
// commands. Pointer fields distinguish "unset" from an explicit false/zero.
type AggregationConfiguration struct {
	Extension    string   `mapstructure:"ext"`
	Technologies []string `mapstructure:"technologies"`
	Recursive    *bool    `mapstructure:"recursive"`
	Split        *bool    `mapstructure:"split"`
	MaxTokens    *int     `mapstructure:"max_tokens"`
	Model        string   `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the global file under
// the user's home directory and a local file in the working directory, with
// local values overriding global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, GlobalConfigDirectoryName, ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Copy.Technologies = utils.DeduplicateStrings(merged.Copy.Technologies)
	merged.Tree.Technologies = utils.DeduplicateStrings(merged.Tree.Technologies)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	information, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if information.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Copy = result.Copy.merge(override.Copy)
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (configuration AggregationConfiguration) merge(override AggregationConfiguration) AggregationConfiguration {
	result := configuration
	if override.Extension != "" {
		result.Extension = override.Extension
	}
	if len(override.Technologies) > 0 {
		result.Technologies = append([]string{}, utils.DeduplicateStrings(override.Technologies)...)
	}
	if override.Recursive != nil {
		result.Recursive = cloneBool(override.Recursive)
	}
	if override.Split != nil {
		result.Split = cloneBool(override.Split)
	}
	if override.MaxTokens != nil {
		result.MaxTokens = cloneInt(override.MaxTokens)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
