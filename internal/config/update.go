package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/util"
	"gopkg.in/yaml.v3"
)

const fileHeader = `# hwdash configuration. Every key can be overridden with HWDASH_<SECTION>_<KEY>,
# e.g. HWDASH_GPU_BACKEND=none.
`

// Keys lists every settable dotted key.
func Keys() []string {
	return []string{
		"version",
		"history.depth",
		"cpu.backend",
		"cpu.interval",
		"cpu.proc_root",
		"gpu.backend",
		"gpu.device",
		"gpu.required",
		"gpu.interval",
		"gpu.max_fan_rpm",
		"gpu.temperature_max",
		"gpu.nvidia_smi_path",
		"gpu.sys_root",
		"dashboard.plots",
		"dashboard.palette",
		"dashboard.columns",
	}
}

// Marshal renders cfg as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default config to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Pass --force to overwrite it, or edit it with 'hwdash config set'.")
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render the default config", "")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create config directory: "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write config file: "+path,
			"Check file permissions")
	}
	return nil
}

// SetValue sets a dotted key in the config file at configPath. It preserves
// the existing YAML structure and comments, creates missing sections, and
// refuses to write a result that fails Validate. value is parsed as YAML, so
// "[memory, gpu-fan]" sets a list and "true" a bool.
func SetValue(configPath, key, value string) error {
	if !slices.Contains(Keys(), key) {
		suggestion := "Valid keys: " + strings.Join(Keys(), ", ")
		if hint := util.DidYouMean(key, Keys()); hint != "" {
			suggestion = strings.ToUpper(hint[:1]) + hint[1:]
		}
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown config key '%s'", key), suggestion)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if root.Kind == 0 {
		// Empty file
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	var valueDoc yaml.Node
	if err := yaml.Unmarshal([]byte(value), &valueDoc); err != nil {
		return fmt.Errorf("failed to parse value %q: %w", value, err)
	}
	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	if len(valueDoc.Content) > 0 {
		valueNode = valueDoc.Content[0]
	}

	parts := strings.Split(key, ".")
	parent := docNode
	for _, section := range parts[:len(parts)-1] {
		child := findMapValue(parent, section)
		if child == nil || child.Kind != yaml.MappingNode {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			setMapValue(parent, section, child)
		}
		parent = child
	}
	setMapValue(parent, parts[len(parts)-1], valueNode)

	// Write back to file
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(buf.Bytes(), cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't accept %q", key, value),
			"Check the value type: durations look like 200ms, lists like [a, b].")
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

// setMapValue replaces the value of key in a mapping node, appending the
// pair when the key is absent.
func setMapValue(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			// Keep comments attached to the old value.
			value.LineComment = node.Content[i+1].LineComment
			node.Content[i+1] = value
			return
		}
	}

	keyNode := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: key,
	}
	node.Content = append(node.Content, keyNode, value)
}
