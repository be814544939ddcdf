package style

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/xmigraph/pkg/errors"
)

// LoadOverrides reads a TOML file of style overrides. Keys at the top
// level, or under a [styles] table, map a type to its style string:
//
//	ArchiMate_ApplicationComponent = "shape=mxgraph.archimate3.application;appType=comp;"
//
//	[styles]
//	"uml:Class" = "swimlane;"
//
// Entries under [styles] win over top-level ones.
func LoadOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "style file not found: %s", path)
		}
		return nil, fmt.Errorf("read style file: %w", err)
	}
	return ParseOverrides(string(data))
}

// ParseOverrides parses TOML style overrides; see [LoadOverrides].
func ParseOverrides(data string) (map[string]string, error) {
	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "parse style overrides")
	}

	out := make(map[string]string, len(raw))
	var nested map[string]any
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case map[string]any:
			if k != "styles" {
				return nil, errors.New(errors.ErrCodeInvalidStyle, "unexpected table [%s]", k)
			}
			nested = v
		default:
			return nil, errors.New(errors.ErrCodeInvalidStyle, "style for %q must be a string, got %T", k, v)
		}
	}
	for k, v := range nested {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidStyle, "style for %q must be a string, got %T", k, v)
		}
		out[k] = s
	}
	return out, nil
}
