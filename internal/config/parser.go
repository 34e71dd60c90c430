package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Parse decodes TOML content over base and validates the result.
//
// Unknown keys are reported as warnings rather than errors so older config files keep working.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg, warnings, err := decode(content, base)
	if err != nil {
		return Config{}, nil, err
	}
	validated, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validated...), nil
}

func decode(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		return base, nil, nil
	}

	cfg := base
	warnings := make([]Warning, 0)

	decoder := toml.NewDecoder(strings.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return Config{}, nil, describeDecodeError(err)
		}
		for _, missing := range strict.Errors {
			row, _ := missing.Position()
			warnings = append(warnings, Warning{
				Line:    row,
				Message: fmt.Sprintf("unknown key %q", strings.Join(missing.Key(), ".")),
			})
		}

		cfg = base
		if err := toml.Unmarshal([]byte(content), &cfg); err != nil {
			return Config{}, nil, describeDecodeError(err)
		}
	}
	return cfg, warnings, nil
}

func describeDecodeError(err error) error {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("line %d column %d: %s", row, col, decodeErr.Error())
	}
	return err
}
