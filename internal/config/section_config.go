// Package config reads the section-style configuration file that sets up
// the kernel log sink:
//
//	sink: default
//		level warn
//		pid true
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// PropertyType represents the type of a configuration property
type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeInt    PropertyType = "int"
	TypeBool   PropertyType = "bool"
)

// Schema describes one property of a section
type Schema struct {
	Type        PropertyType
	Description string
	Required    bool
	MinLength   *int
	MaxLength   *int
	Pattern     *string
}

// SectionPlugin defines the schema for one section type
type SectionPlugin struct {
	TypeName    string
	Properties  map[string]*Schema
	Validations []ValidationFunc
}

type ValidationFunc func(data map[string]string) error

// Section represents a single configuration section
type Section struct {
	Type       string
	ID         string
	Properties map[string]string
}

// ConfigData holds all sections and their ordering
type ConfigData struct {
	FilePath string
	Sections map[string]*Section
	Order    []string
}

// WatchCallback is called when configuration changes are detected
type WatchCallback func(*ConfigData)

// SectionConfig parses files made of sections. Each section starts with a
// "type: id" header followed by indented "key value" lines, and ends at a
// blank line.
type SectionConfig struct {
	mu       sync.RWMutex
	plugins  map[string]*SectionPlugin
	idSchema *Schema
}

func NewSectionConfig(idSchema *Schema) *SectionConfig {
	return &SectionConfig{
		plugins:  make(map[string]*SectionPlugin),
		idSchema: idSchema,
	}
}

func (sc *SectionConfig) RegisterPlugin(plugin *SectionPlugin) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.plugins[plugin.TypeName] = plugin
}

func (sc *SectionConfig) GetPlugin(typeName string) *SectionPlugin {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.plugins[typeName]
}

// Describe writes one line per property of the named section type, sorted
// by name, for command help output.
func (sc *SectionConfig) Describe(w io.Writer, typeName string) error {
	plugin := sc.GetPlugin(typeName)
	if plugin == nil {
		return fmt.Errorf("unknown section type: %s", typeName)
	}

	names := make([]string, 0, len(plugin.Properties))
	for name := range plugin.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema := plugin.Properties[name]
		if _, err := fmt.Fprintf(w, "  %-16s %-7s %s\n", name, schema.Type, schema.Description); err != nil {
			return err
		}
	}
	return nil
}

// Parse reads and parses a configuration file
func (sc *SectionConfig) Parse(filename string) (*ConfigData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config, err := sc.ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	config.FilePath = filename
	return config, nil
}

// ParseReader parses configuration from r
func (sc *SectionConfig) ParseReader(r io.Reader) (*ConfigData, error) {
	config := &ConfigData{
		Sections: make(map[string]*Section),
		Order:    make([]string, 0),
	}

	var currentSection *Section
	finish := func() error {
		if currentSection == nil {
			return nil
		}
		if err := sc.validateSection(currentSection); err != nil {
			return fmt.Errorf("validation error in section %s: %w", currentSection.ID, err)
		}
		if _, dup := config.Sections[currentSection.ID]; dup {
			return fmt.Errorf("duplicate section %s", currentSection.ID)
		}
		config.Sections[currentSection.ID] = currentSection
		config.Order = append(config.Order, currentSection.ID)
		currentSection = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			continue
		}

		if line == "" {
			if err := finish(); err != nil {
				return nil, err
			}
			continue
		}

		if currentSection == nil {
			sectionType, sectionID, err := parseSectionHeader(line)
			if err != nil {
				return nil, fmt.Errorf("error parsing section header at line %d: %w", lineNum, err)
			}

			if err := sc.validateSectionType(sectionType); err != nil {
				return nil, fmt.Errorf("invalid section type at line %d: %w", lineNum, err)
			}

			if err := sc.validateID(sectionID); err != nil {
				return nil, fmt.Errorf("invalid section id at line %d: %w", lineNum, err)
			}

			currentSection = &Section{
				Type:       sectionType,
				ID:         sectionID,
				Properties: make(map[string]string),
			}
			continue
		}

		key, value, err := parseSectionContent(line)
		if err != nil {
			return nil, fmt.Errorf("error parsing line %d: %w", lineNum, err)
		}

		if err := sc.validateProperty(currentSection.Type, key, value); err != nil {
			return nil, fmt.Errorf("invalid property at line %d: %w", lineNum, err)
		}

		currentSection.Properties[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
	}

	if err := finish(); err != nil {
		return nil, err
	}

	return config, nil
}

func (sc *SectionConfig) validateSectionType(sectionType string) error {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if _, exists := sc.plugins[sectionType]; !exists {
		return fmt.Errorf("unknown section type: %s", sectionType)
	}
	return nil
}

func (sc *SectionConfig) validateID(id string) error {
	if sc.idSchema == nil {
		return nil
	}
	return checkValue("id", id, sc.idSchema)
}

// parseValue parses a string value according to its schema type
func parseValue(value string, schema *Schema) (interface{}, error) {
	switch schema.Type {
	case TypeString, "":
		return value, nil
	case TypeInt:
		return strconv.Atoi(value)
	case TypeBool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("unsupported type: %s", schema.Type)
	}
}

func checkValue(key, value string, schema *Schema) error {
	if _, err := parseValue(value, schema); err != nil {
		return fmt.Errorf("value '%s' for '%s' is not a valid %s", value, key, schema.Type)
	}

	if schema.Pattern != nil {
		matched, err := regexp.MatchString(*schema.Pattern, value)
		if err != nil {
			return fmt.Errorf("invalid pattern for '%s': %w", key, err)
		}
		if !matched {
			return fmt.Errorf("value '%s' for property '%s' does not match pattern '%s'", value, key, *schema.Pattern)
		}
	}

	if schema.MinLength != nil && len(value) < *schema.MinLength {
		return fmt.Errorf("value for '%s' is too short (minimum length: %d)", key, *schema.MinLength)
	}

	if schema.MaxLength != nil && len(value) > *schema.MaxLength {
		return fmt.Errorf("value for '%s' is too long (maximum length: %d)", key, *schema.MaxLength)
	}

	return nil
}

func (sc *SectionConfig) validateProperty(sectionType, key, value string) error {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	plugin, exists := sc.plugins[sectionType]
	if !exists {
		return fmt.Errorf("unknown section type: %s", sectionType)
	}

	propSchema, exists := plugin.Properties[key]
	if !exists {
		return fmt.Errorf("unknown property '%s' for section type '%s'", key, sectionType)
	}

	return checkValue(key, value, propSchema)
}

func (sc *SectionConfig) validateSection(section *Section) error {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	plugin, exists := sc.plugins[section.Type]
	if !exists {
		return fmt.Errorf("unknown section type: %s", section.Type)
	}

	for propName, schema := range plugin.Properties {
		if schema.Required {
			if _, exists := section.Properties[propName]; !exists {
				return fmt.Errorf("required property %s is missing", propName)
			}
		}
	}

	for _, validate := range plugin.Validations {
		if err := validate(section.Properties); err != nil {
			return err
		}
	}

	return nil
}

func parseSectionHeader(line string) (string, string, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid section header format")
	}

	sectionType := strings.TrimSpace(parts[0])
	sectionID := strings.TrimSpace(parts[1])

	if sectionType == "" || sectionID == "" {
		return "", "", fmt.Errorf("empty section type or ID")
	}

	return sectionType, sectionID, nil
}

func parseSectionContent(line string) (string, string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", fmt.Errorf("empty line")
	}

	parts := strings.Fields(line)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid property format")
	}

	key := parts[0]
	value := strings.TrimSpace(strings.TrimPrefix(line, key))

	return key, value, nil
}
