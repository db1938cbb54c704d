package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// Dataset is the static mock data standing in for a catalog backend.
type Dataset struct {
	Categories []domain.Category `yaml:"categories"`
	Artisans   []domain.Artisan  `yaml:"artisans"`
	Products   []domain.Product  `yaml:"products"`
	Users      []domain.User     `yaml:"users"`
}

func LoadDataset(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// DefaultDataset decodes the dataset compiled into the binary.
func DefaultDataset() (*Dataset, error) {
	return LoadDataset(bytes.NewReader(embeddedCatalog))
}

// LoadDatasetFile reads path, or falls back to the embedded dataset when path
// is empty.
func LoadDatasetFile(path string) (*Dataset, error) {
	if path == "" {
		return DefaultDataset()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadDataset(f)
}

func (d *Dataset) Validate() error {
	artisans := make(map[string]domain.Artisan, len(d.Artisans))
	for _, a := range d.Artisans {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := artisans[a.ID]; dup {
			return fmt.Errorf("duplicate artisan id %q", a.ID)
		}
		artisans[a.ID] = a
	}

	seen := make(map[string]struct{}, len(d.Products))
	for _, p := range d.Products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		owner, ok := artisans[p.ArtisanID]
		if !ok {
			return fmt.Errorf("product %s: unknown artisan %q", p.ID, p.ArtisanID)
		}
		if owner.Name != p.ArtisanName {
			return fmt.Errorf("product %s: artisan name %q does not match %q", p.ID, p.ArtisanName, owner.Name)
		}
	}

	for _, u := range d.Users {
		if !u.Role.Valid() {
			return fmt.Errorf("user %s: invalid role %q", u.ID, u.Role)
		}
	}
	return nil
}
