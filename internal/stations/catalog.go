// Package stations resolves radiosonde station identifiers to their names
// and coordinates.
package stations

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Stations []domain.StationInfo `yaml:"stations"`
}

// Catalog indexes stations by WMO number and by ICAO identifier.
type Catalog struct {
	byID   map[string]domain.StationInfo
	byICAO map[string]domain.StationInfo
}

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read station catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog. Every station needs an ID, and IDs must be unique.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse station catalog: %w", err)
	}

	c := &Catalog{
		byID:   make(map[string]domain.StationInfo, len(f.Stations)),
		byICAO: make(map[string]domain.StationInfo, len(f.Stations)),
	}
	for i, st := range f.Stations {
		st.ID = strings.ToUpper(strings.TrimSpace(st.ID))
		st.ICAO = strings.ToUpper(strings.TrimSpace(st.ICAO))
		if st.ID == "" {
			return nil, fmt.Errorf("station catalog entry %d: missing id", i)
		}
		if _, dup := c.byID[st.ID]; dup {
			return nil, fmt.Errorf("station catalog: duplicate id %q", st.ID)
		}
		c.byID[st.ID] = st
		if st.ICAO != "" {
			c.byICAO[st.ICAO] = st
		}
	}
	return c, nil
}

// Lookup finds a station by WMO number or ICAO identifier.
func (c *Catalog) Lookup(station string) (domain.StationInfo, bool) {
	key := strings.ToUpper(strings.TrimSpace(station))
	if st, ok := c.byID[key]; ok {
		return st, true
	}
	st, ok := c.byICAO[key]
	return st, ok
}

// Len returns the number of stations.
func (c *Catalog) Len() int { return len(c.byID) }
