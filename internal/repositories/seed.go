package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadSeedFile reads a list of movie records from a .json, .yaml or .yml file.
func LoadSeedFile(path string) ([]models.MovieRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data, filepath.Ext(path))
}

// ParseSeed decodes seed data according to a file extension.
func ParseSeed(data []byte, ext string) ([]models.MovieRecord, error) {
	var records []models.MovieRecord
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON seed: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: seed file extension %q", shared.ErrUnsupportedFormat, ext)
	}

	for i, rec := range records {
		if strings.TrimSpace(rec.Title) == "" && rec.ID == "" {
			return nil, fmt.Errorf("%w: seed record %d has neither id nor title", shared.ErrInvalidInput, i)
		}
	}
	return records, nil
}
