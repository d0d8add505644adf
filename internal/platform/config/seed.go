package config

import (
	"fmt"
	"strings"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/spf13/viper"
)

// seedFile is the on-disk shape of the envelope seed configuration:
//
//	[[envelopes]]
//	name = "Groceries"
//	category = "living"
//	allocation = 400.0
//	rollover = false
//	is_individual = false
type seedFile struct {
	Envelopes []dto.EnvelopeSeed `mapstructure:"envelopes"`
}

// LoadEnvelopeSeeds parses a TOML seed file into envelope seed definitions.
func LoadEnvelopeSeeds(path string) ([]dto.EnvelopeSeed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading seed file %s: %v", apperrors.ErrConfig, path, err)
	}

	var file seedFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("%w: parsing seed file %s: %v", apperrors.ErrConfig, path, err)
	}

	for i, seed := range file.Envelopes {
		if strings.TrimSpace(seed.Name) == "" {
			return nil, fmt.Errorf("%w: seed entry %d has an empty name", apperrors.ErrConfig, i)
		}
		if seed.Allocation < 0 {
			return nil, fmt.Errorf("%w: seed %q has a negative allocation", apperrors.ErrConfig, seed.Name)
		}
	}

	return file.Envelopes, nil
}

// splitAndTrim splits a comma-separated list, dropping empty items.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
