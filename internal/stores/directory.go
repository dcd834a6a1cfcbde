// Package stores holds the read-only store directory the widget matches
// visitors against.
package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"store-feedback/internal/calculator"
	"store-feedback/internal/excel"
	"store-feedback/internal/models"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when a store id is not in the directory.
	ErrNotFound = errors.New("store not found")
	// ErrInvalidDirectory is returned when a directory cannot be built from its source.
	ErrInvalidDirectory = errors.New("invalid store directory")
)

// Directory is built once at startup and shared read-only.
type Directory struct {
	stores []models.StoreLocation
	byID   map[string]int
}

// File is the on-disk YAML layout.
type File struct {
	Stores []models.StoreLocation `yaml:"stores"`
}

// StoreView is the JSON shape served to the widget.
type StoreView struct {
	models.StoreLocation `yaml:",inline"`

	Geohash             string   `json:"geohash" yaml:"geohash"`
	GoogleReviewQRImage string   `json:"googleReviewQrImage,omitempty" yaml:"googleReviewQrImage,omitempty"`
	Distance            *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
}

func New(list []models.StoreLocation) (*Directory, error) {
	d := &Directory{
		stores: make([]models.StoreLocation, 0, len(list)),
		byID:   make(map[string]int, len(list)),
	}
	for _, s := range list {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("%w: store %q has no id", ErrInvalidDirectory, s.Name)
		}
		if _, dup := d.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate store id %q", ErrInvalidDirectory, s.ID)
		}
		d.byID[s.ID] = len(d.stores)
		d.stores = append(d.stores, s)
	}
	return d, nil
}

// Load builds a directory from a YAML or spreadsheet file, or the built-in
// defaults when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return New(Defaults())
	}

	var list []models.StoreLocation
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err := excel.ReadStoresFile(path)
		if err != nil {
			return nil, fmt.Errorf("read stores spreadsheet: %w", err)
		}
		list = rows
	default:
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read stores file: %w", err)
		}
		var f File
		if err := yaml.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDirectory, err)
		}
		list = f.Stores
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s lists no stores", ErrInvalidDirectory, path)
	}
	return New(list)
}

// WriteYAML stores a list in the layout Load understands.
func WriteYAML(path string, list []models.StoreLocation) error {
	payload, err := yaml.Marshal(File{Stores: list})
	if err != nil {
		return fmt.Errorf("marshal stores: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stores directory: %w", err)
		}
	}
	return os.WriteFile(path, payload, 0o644)
}

// All returns a copy of the stores in configuration order.
func (d *Directory) All() []models.StoreLocation {
	out := make([]models.StoreLocation, len(d.stores))
	copy(out, d.stores)
	return out
}

func (d *Directory) Len() int {
	return len(d.stores)
}

func (d *Directory) Get(id string) (models.StoreLocation, error) {
	idx, ok := d.byID[id]
	if !ok {
		return models.StoreLocation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.stores[idx], nil
}

func (d *Directory) Nearest(q models.Coordinate) (models.StoreLocation, bool) {
	return calculator.FindNearest(q, d.stores)
}

// Within returns the stores within radiusMiles of q, closest first.
func (d *Directory) Within(q models.Coordinate, radiusMiles float64) []calculator.Ranked[models.StoreLocation] {
	inRange := calculator.WithinRadius(q, d.stores, radiusMiles)
	items := make([]models.StoreLocation, len(inRange))
	for i, r := range inRange {
		items[i] = r.Item
	}
	return calculator.RankByDistance(q, items)
}

// Search matches name, city and address case-insensitively and zip as a plain
// substring. An empty query returns everything.
func (d *Directory) Search(query string) []models.StoreLocation {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.All()
	}
	q := strings.ToLower(query)

	var res []models.StoreLocation
	for _, s := range d.stores {
		if strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.City), q) ||
			strings.Contains(strings.ToLower(s.Address), q) ||
			strings.Contains(s.Zip, query) {
			res = append(res, s)
		}
	}
	return res
}

func View(s models.StoreLocation) StoreView {
	v := StoreView{
		StoreLocation: s,
		Geohash:       geohash.Encode(s.Lat, s.Lng),
	}
	if s.GoogleReviewQRCode != "" {
		v.GoogleReviewQRImage = DriveImageURL(s.GoogleReviewQRCode)
	}
	return v
}

func ViewWithDistance(s models.StoreLocation, miles float64) StoreView {
	v := View(s)
	v.Distance = &miles
	return v
}

var driveFileID = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)

// DriveImageURL turns a Google Drive share link into a direct image link.
func DriveImageURL(url string) string {
	m := driveFileID.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return "https://drive.google.com/uc?export=view&id=" + m[1]
}
