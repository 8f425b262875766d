package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sonroyaalmerol/kmsglog/internal/syslog"
)

const (
	// SinkSectionType is the section type holding sink options.
	SinkSectionType = "sink"

	// DefaultSinkID is the section read when a file holds several sinks.
	DefaultSinkID = "default"

	// DefaultConfigPath is read when EnvConfigPath is unset.
	DefaultConfigPath = "/etc/kmsglog.cfg"

	// EnvConfigPath names an alternative config file.
	EnvConfigPath = "KMSGLOG_CONFIG"
)

// ConfigPath returns the config file named by the environment, or the default.
func ConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	return DefaultConfigPath
}

// NewSinkConfig returns a SectionConfig that understands sink sections.
func NewSinkConfig() *SectionConfig {
	minID := 1
	idPattern := `^[A-Za-z0-9][A-Za-z0-9_.-]*$`
	tagPattern := `^[^\[\]<>:\s]*$`
	maxTag := 32

	sc := NewSectionConfig(&Schema{
		Type:        TypeString,
		Description: "Sink ID",
		Required:    true,
		MinLength:   &minID,
		Pattern:     &idPattern,
	})

	sc.RegisterPlugin(&SectionPlugin{
		TypeName: SinkSectionType,
		Properties: map[string]*Schema{
			"level": {
				Type:        TypeString,
				Description: "Most verbose level written to the kernel log",
			},
			"pid": {
				Type:        TypeBool,
				Description: "Add [pid] after the priority prefix",
			},
			"tag": {
				Type:        TypeString,
				Description: "Identifier written before the pid",
				MaxLength:   &maxTag,
				Pattern:     &tagPattern,
			},
			"device": {
				Type:        TypeString,
				Description: "Kernel log device node",
			},
			"max-entry-size": {
				Type:        TypeInt,
				Description: "Largest entry in bytes, newline included",
			},
			"newlines": {
				Type:        TypeString,
				Description: "escape, truncate or reject",
			},
		},
		Validations: []ValidationFunc{
			func(data map[string]string) error {
				_, err := applySinkProperties(syslog.DefaultOptions(), data)
				return err
			},
		},
	})

	return sc
}

// LoadSinkOptions reads path and returns the options of its sink section.
func LoadSinkOptions(path string) (syslog.Options, error) {
	data, err := NewSinkConfig().Parse(path)
	if err != nil {
		return syslog.Options{}, err
	}
	return SinkOptions(data)
}

// SinkOptions picks the "default" sink section, or the first sink section
// when there is no default, and layers it over syslog.DefaultOptions. A
// file without sink sections yields the defaults.
func SinkOptions(data *ConfigData) (syslog.Options, error) {
	section := data.Sections[DefaultSinkID]
	if section == nil || section.Type != SinkSectionType {
		section = nil
		for _, id := range data.Order {
			if s := data.Sections[id]; s.Type == SinkSectionType {
				section = s
				break
			}
		}
	}

	if section == nil {
		return syslog.DefaultOptions(), nil
	}
	return applySinkProperties(syslog.DefaultOptions(), section.Properties)
}

func applySinkProperties(opts syslog.Options, props map[string]string) (syslog.Options, error) {
	var err error

	if v, ok := props["level"]; ok {
		if opts.MaxLevel, err = syslog.ParseLevel(v); err != nil {
			return opts, err
		}
	}

	if v, ok := props["pid"]; ok {
		if opts.WithPID, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("invalid pid value %q: %w", v, err)
		}
	}

	if v, ok := props["tag"]; ok {
		opts.Tag = v
	}

	if v, ok := props["device"]; ok {
		opts.DevicePath = v
	}

	if v, ok := props["max-entry-size"]; ok {
		if opts.MaxEntrySize, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("invalid max-entry-size %q: %w", v, err)
		}
	}

	if v, ok := props["newlines"]; ok {
		if opts.Newlines, err = syslog.ParseNewlinePolicy(v); err != nil {
			return opts, err
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}

	return opts, nil
}
