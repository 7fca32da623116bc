// Package sites provides the static catalog of curated cool spots and
// sun/shade artworks. The built-in catalog is embedded; operators may replace
// it with their own TOML file.
package sites

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/couchcryptid/shady-map-service/internal/domain"
)

//go:embed sites.toml
var builtin []byte

// ErrInvalidSite is returned when a catalog entry lacks a title or has a
// non-finite coordinate.
var ErrInvalidSite = errors.New("invalid site")

// Catalog holds both static site collections.
type Catalog struct {
	Curated []domain.Site `toml:"curated"`
	Artwork []domain.Site `toml:"artwork"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog from path, or returns the embedded catalog when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("decode sites file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sites file %s: %w", path, err)
	}
	return &c, nil
}

// Parse decodes a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every entry has a title and finite coordinates.
func (c *Catalog) Validate() error {
	for kind, list := range map[domain.SiteKind][]domain.Site{
		domain.SiteCurated: c.Curated,
		domain.SiteArtwork: c.Artwork,
	} {
		for i, s := range list {
			if strings.TrimSpace(s.Title) == "" {
				return fmt.Errorf("%w: %s[%d] has no title", ErrInvalidSite, kind, i)
			}
			if !finite(s.Latitude) || !finite(s.Longitude) {
				return fmt.Errorf("%w: %s %q has a non-finite coordinate", ErrInvalidSite, kind, s.Title)
			}
		}
	}
	return nil
}

// Len returns the total number of sites.
func (c *Catalog) Len() int {
	return len(c.Curated) + len(c.Artwork)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
