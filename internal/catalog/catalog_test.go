package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := Default()
	require.NoError(t, cat.Validate())

	assert.Len(t, cat.Bases, 5)
	assert.Len(t, cat.Shapes, 4)
	assert.Len(t, cat.Fillings, 8)
	assert.Len(t, cat.Frostings, 6)
	assert.Len(t, cat.Addons, 10)
	assert.Len(t, cat.DeliverySlots, 6)
}

func TestDefaultCatalogLookups(t *testing.T) {
	cat := Default()

	vanilla, ok := cat.Base("vanilla")
	require.True(t, ok)
	assert.True(t, vanilla.Price.Equal(decimal.NewFromInt(25)))

	heart, ok := cat.Shape("heart")
	require.True(t, ok)
	assert.Len(t, heart.Sizes, 2)
	_, hasLarge := heart.Size("large")
	assert.False(t, hasLarge, "heart cakes are not offered in large")

	tiered, ok := cat.Shape("tiered")
	require.True(t, ok)
	medium, ok := tiered.Size("medium")
	require.True(t, ok)
	assert.Equal(t, 18, medium.Serves)
	assert.True(t, medium.Multiplier.Equal(decimal.RequireFromString("1.8")))

	_, ok = cat.Filling("caramel")
	assert.True(t, ok)
	_, ok = cat.Frosting("buttercream-white")
	assert.True(t, ok)
	_, ok = cat.Addon("missing")
	assert.False(t, ok)

	candles := cat.AddonsByCategory(domain.AddonCategoryCandle)
	require.Len(t, candles, 3)
	assert.Equal(t, "birthday-candles", candles[0].ID)

	assert.True(t, cat.IsDeliverySlot("9:00 AM - 11:00 AM"))
	assert.False(t, cat.IsDeliverySlot("midnight"))
}

func TestShapeLookupReturnsCopy(t *testing.T) {
	cat := Default()
	round, ok := cat.Shape("round")
	require.True(t, ok)
	round.Sizes[0].Name = "mutated"

	again, _ := cat.Shape("round")
	assert.Equal(t, `6" Small`, again.Sizes[0].Name)
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	cat := Default()
	cat.Bases = append(cat.Bases, cat.Bases[0])
	cat.Shapes[0].Sizes = nil
	cat.Addons[0].Category = "sticker"

	err := cat.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
	assert.Contains(t, err.Error(), `duplicate id "vanilla"`)
	assert.Contains(t, err.Error(), "round has no sizes")
	assert.Contains(t, err.Error(), "unknown category")
}

const overrideYAML = `
bases:
  - id: carrot
    name: Carrot
    price: 27.5
    image: https://example.com/carrot.jpg
shapes:
  - id: hexagon
    name: Hexagon
    price_multiplier: 1.2
    sizes:
      - id: small
        name: 6" Small
        serves: 8
        price_multiplier: 1
delivery_slots:
  - 10:00 AM - 12:00 PM
`

func TestParseOverridesOnlyProvidedTables(t *testing.T) {
	cat, err := Parse([]byte(overrideYAML))
	require.NoError(t, err)

	require.Len(t, cat.Bases, 1)
	assert.Equal(t, "carrot", cat.Bases[0].ID)
	assert.True(t, cat.Bases[0].Price.Equal(decimal.RequireFromString("27.5")))

	hexagon, ok := cat.Shape("hexagon")
	require.True(t, ok)
	assert.True(t, hexagon.Multiplier.Equal(decimal.RequireFromString("1.2")))

	assert.Len(t, cat.Frostings, 6, "frostings fall back to defaults")
	assert.Equal(t, []string{"10:00 AM - 12:00 PM"}, cat.DeliverySlots)
}

func TestParseRejectsUnknownFieldsAndEmptyDocuments(t *testing.T) {
	_, err := Parse([]byte("bases:\n  - id: x\n    flavour: odd\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))

	_, err = Parse([]byte("   "))
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overrideYAML), 0o600))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "carrot", cat.Bases[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadObjectUsesOpener(t *testing.T) {
	var gotBucket, gotObject string
	open := func(_ context.Context, bucket, object string) (io.ReadCloser, error) {
		gotBucket, gotObject = bucket, object
		return io.NopCloser(strings.NewReader(overrideYAML)), nil
	}

	cat, err := LoadObject(context.Background(), open, "cakecraft-config", "catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "cakecraft-config", gotBucket)
	assert.Equal(t, "catalog.yaml", gotObject)
	assert.Equal(t, "carrot", cat.Bases[0].ID)
}

func TestLoadObjectErrors(t *testing.T) {
	_, err := LoadObject(context.Background(), nil, "b", "o")
	assert.Error(t, err)

	open := func(context.Context, string, string) (io.ReadCloser, error) {
		return nil, errors.New("boom")
	}
	_, err = LoadObject(context.Background(), open, "", "o")
	assert.Error(t, err)

	_, err = LoadObject(context.Background(), open, "b", "o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gs://b/o")
}
