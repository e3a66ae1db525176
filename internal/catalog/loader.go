package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

const maxCatalogBytes = 1 << 20

type fileCatalog struct {
	Bases         []fileBase     `yaml:"bases"`
	Shapes        []fileShape    `yaml:"shapes"`
	Fillings      []filePriced   `yaml:"fillings"`
	Frostings     []fileBase     `yaml:"frostings"`
	Addons        []fileAddon    `yaml:"addons"`
	Featured      []fileFeatured `yaml:"featured"`
	DeliverySlots []string       `yaml:"delivery_slots"`
}

type fileBase struct {
	ID    string          `yaml:"id"`
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
	Image string          `yaml:"image"`
}

type fileShape struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Multiplier decimal.Decimal `yaml:"price_multiplier"`
	Sizes      []fileSize      `yaml:"sizes"`
}

type fileSize struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Serves     int             `yaml:"serves"`
	Multiplier decimal.Decimal `yaml:"price_multiplier"`
}

type filePriced struct {
	ID    string          `yaml:"id"`
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
}

type fileAddon struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Price    decimal.Decimal `yaml:"price"`
	Category string          `yaml:"category"`
}

type fileFeatured struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Image       string          `yaml:"image"`
	Price       decimal.Decimal `yaml:"price"`
}

// Parse decodes a YAML catalog document. Tables omitted from the document fall back to
// the built-in defaults so overrides can be partial.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidCatalog)
	}
	var doc fileCatalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	cat := Default()
	if len(doc.Bases) > 0 {
		cat.Bases = make([]domain.CakeBase, 0, len(doc.Bases))
		for _, b := range doc.Bases {
			cat.Bases = append(cat.Bases, domain.CakeBase{ID: strings.TrimSpace(b.ID), Name: b.Name, Price: b.Price, Image: b.Image})
		}
	}
	if len(doc.Shapes) > 0 {
		cat.Shapes = make([]domain.CakeShape, 0, len(doc.Shapes))
		for _, s := range doc.Shapes {
			shape := domain.CakeShape{ID: strings.TrimSpace(s.ID), Name: s.Name, Multiplier: s.Multiplier}
			for _, size := range s.Sizes {
				shape.Sizes = append(shape.Sizes, domain.CakeSize{
					ID:         strings.TrimSpace(size.ID),
					Name:       size.Name,
					Serves:     size.Serves,
					Multiplier: size.Multiplier,
				})
			}
			cat.Shapes = append(cat.Shapes, shape)
		}
	}
	if len(doc.Fillings) > 0 {
		cat.Fillings = make([]domain.CakeFilling, 0, len(doc.Fillings))
		for _, f := range doc.Fillings {
			cat.Fillings = append(cat.Fillings, domain.CakeFilling{ID: strings.TrimSpace(f.ID), Name: f.Name, Price: f.Price})
		}
	}
	if len(doc.Frostings) > 0 {
		cat.Frostings = make([]domain.CakeFrosting, 0, len(doc.Frostings))
		for _, f := range doc.Frostings {
			cat.Frostings = append(cat.Frostings, domain.CakeFrosting{ID: strings.TrimSpace(f.ID), Name: f.Name, Price: f.Price, Image: f.Image})
		}
	}
	if len(doc.Addons) > 0 {
		cat.Addons = make([]domain.CakeAddon, 0, len(doc.Addons))
		for _, a := range doc.Addons {
			cat.Addons = append(cat.Addons, domain.CakeAddon{
				ID:       strings.TrimSpace(a.ID),
				Name:     a.Name,
				Price:    a.Price,
				Category: domain.AddonCategory(strings.ToLower(strings.TrimSpace(a.Category))),
			})
		}
	}
	if len(doc.Featured) > 0 {
		cat.Featured = make([]domain.FeaturedCake, 0, len(doc.Featured))
		for _, f := range doc.Featured {
			cat.Featured = append(cat.Featured, domain.FeaturedCake{
				ID:          strings.TrimSpace(f.ID),
				Name:        f.Name,
				Description: f.Description,
				Image:       f.Image,
				Price:       f.Price,
			})
		}
	}
	if len(doc.DeliverySlots) > 0 {
		cat.DeliverySlots = make([]string, 0, len(doc.DeliverySlots))
		for _, slot := range doc.DeliverySlots {
			if trimmed := strings.TrimSpace(slot); trimmed != "" {
				cat.DeliverySlots = append(cat.DeliverySlots, trimmed)
			}
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Read parses a catalog from r.
func Read(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, errors.New("catalog: reader is required")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	if len(data) > maxCatalogBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrInvalidCatalog, maxCatalogBytes)
	}
	return Parse(data)
}

// LoadFile parses the YAML catalog at path.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer file.Close()
	return Read(file)
}

// ObjectOpener opens a stored object for reading.
type ObjectOpener func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// StorageOpener adapts a Cloud Storage client to ObjectOpener.
func StorageOpener(client *storage.Client) ObjectOpener {
	return func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		if client == nil {
			return nil, errors.New("catalog: storage client is required")
		}
		return client.Bucket(bucket).Object(object).NewReader(ctx)
	}
}

// LoadObject parses a YAML catalog stored as bucket/object.
func LoadObject(ctx context.Context, open ObjectOpener, bucket, object string) (*Catalog, error) {
	bucket = strings.TrimSpace(bucket)
	object = strings.TrimSpace(object)
	if open == nil {
		return nil, errors.New("catalog: object opener is required")
	}
	if bucket == "" || object == "" {
		return nil, errors.New("catalog: bucket and object are required")
	}
	reader, err := open(ctx, bucket, object)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("catalog: gs://%s/%s does not exist: %w", bucket, object, err)
		}
		return nil, fmt.Errorf("catalog: open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()
	return Read(reader)
}
