package sysdetails

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the patterns used to recover system details
// Message patterns may use a named group "value"; the software pattern
// uses "version" and "arch"
type Rules struct {
	MachineProperty string `yaml:"machine_property"`
	Software        string `yaml:"software"`
	OSName          string `yaml:"os_name"`
	OSVersion       string `yaml:"os_version"`
	OSType          string `yaml:"os_type"`
}

// DefaultRules returns the patterns matching log4j exports of the BVC service
func DefaultRules() Rules {
	return Rules{
		MachineProperty: "log4jmachinename",
		Software:        `(?i)\b[a-z][\w.\- ]*?\s+v(?:ersion)?\.?\s*(?P<version>\d+(?:\.\d+)+)\s*\(\s*(?P<arch>x86_64|x86|x64|amd64|arm64|aarch64|ia64|i386)\s*\)`,
		OSName:          `(?i)\bOS\s*Name\s*[:=]\s*(?P<value>[^\r\n;]+)`,
		OSVersion:       `(?i)\bOS\s*Version\s*[:=]\s*(?P<value>[^\r\n;]+)`,
		OSType:          `(?i)\bOS\s*(?:Type|Bitness)\s*[:=]\s*(?P<value>[^\r\n;]+)`,
	}
}

// LoadRules loads rules from a YAML file; fields missing in the file keep their defaults
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read system details rules: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse system details rules: %w", err)
	}

	return rules, nil
}
