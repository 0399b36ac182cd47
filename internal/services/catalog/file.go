package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/elostealo/internal/model"
)

//go:embed handicaps.yaml
var defaultSeed []byte

// Seed is the on-disk catalog format
type Seed struct {
	Version   int              `yaml:"version"`
	Handicaps []model.Handicap `yaml:"handicaps"`
}

// ParseSeed decodes a YAML catalog document
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return seed, nil
}

// FileSource reads handicaps from a YAML file. An empty Path uses the built-in reference catalog.
type FileSource struct {
	Path string
}

var _ Source = FileSource{}

// NewFileSource creates a FileSource
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

// Handicaps reads and parses the file
func (s FileSource) Handicaps(_ context.Context) ([]model.Handicap, error) {
	seed, err := s.Seed()
	if err != nil {
		return nil, err
	}
	return seed.Handicaps, nil
}

// Seed reads the whole document, including its version
func (s FileSource) Seed() (Seed, error) {
	data := defaultSeed
	if s.Path != "" {
		var err error
		data, err = os.ReadFile(s.Path)
		if err != nil {
			return Seed{}, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}
	return ParseSeed(data)
}

// StaticSource serves a fixed list of handicaps
type StaticSource []model.Handicap

// Handicaps returns the list
func (s StaticSource) Handicaps(_ context.Context) ([]model.Handicap, error) {
	return s, nil
}
