package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: office-wall
layout: [weather, joke]
endpoints:
  forecast: http://localhost:9000/forecast
widgets:
  - definition:
      code: weather
      name: Office Weather
      default_input: Lisbon
    tags: [office]
  - definition:
      code: cat
      disabled: true
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)

	assert.Equal(t, "office-wall", doc.Name)
	assert.Equal(t, []string{WidgetWeather, WidgetJoke}, doc.Order())
	require.NotNil(t, doc.Endpoints)
	assert.Equal(t, "http://localhost:9000/forecast", doc.Endpoints.Forecast)
	assert.Equal(t, "Lisbon", doc.Widgets[0].Definition.DefaultInput)
	assert.Equal(t, []string{"office"}, doc.Widgets[0].Tags)
	assert.True(t, doc.Widgets[1].Definition.Disabled)
}

func TestRegistryLoadManifestDocumentMergesDefinitions(t *testing.T) {
	doc := &WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{Definition: WidgetDefinition{Code: WidgetWeather, DefaultInput: "Lisbon"}},
			{Definition: WidgetDefinition{Code: WidgetCat, Disabled: true}},
		},
	}
	reg := NewRegistry()

	require.NoError(t, reg.LoadManifestDocument(doc))

	weather, ok := reg.Definition(WidgetWeather)
	require.True(t, ok)
	assert.Equal(t, "Weather", weather.Name, "blank fields keep the registered value")
	assert.Equal(t, "Lisbon", weather.DefaultInput)
	assert.Equal(t, "weather-city", weather.InputField)
	assert.NotEmpty(t, weather.Schema)

	cat, ok := reg.Definition(WidgetCat)
	require.True(t, ok)
	assert.True(t, cat.Disabled)

	codes := make([]string, 0)
	for _, def := range reg.Definitions() {
		codes = append(codes, def.Code)
	}
	assert.Equal(t, WidgetDog, codes[0], "merging keeps registration order")
	assert.Len(t, codes, len(DefaultWidgetDefinitions()))
}

func TestManifestDisabledWidgetIsNotMounted(t *testing.T) {
	reg := NewDefaultRegistry(ProviderDeps{Client: &stubGetter{}})
	require.NoError(t, reg.LoadManifestDocument(&WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{{Definition: WidgetDefinition{Code: WidgetJoke, Disabled: true}}},
	}))

	svc := NewService(Options{Providers: reg})
	_, ok := svc.Widget(WidgetJoke)
	assert.False(t, ok)

	svc = NewService(Options{Providers: reg, Widgets: []string{WidgetJoke, WidgetDog}})
	_, ok = svc.Widget(WidgetJoke)
	assert.False(t, ok)
	_, ok = svc.Widget(WidgetDog)
	assert.True(t, ok)
}

func TestManifestDuplicateCodes(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: dog
      name: First
  - definition:
      code: dog
      name: Second
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates widget code")
}

func TestManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("widgets:\n  - definition:\n      code: dog\n      colour: red\n"))
	require.Error(t, err)
}

func TestManifestEmpty(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest is empty")
}

func TestDefaultManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manifest.yml")
	require.NoError(t, WriteManifestFile(path, DefaultManifest()))

	doc, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Len(t, doc.Widgets, len(DefaultWidgetDefinitions()))
	assert.Equal(t, WidgetDog, doc.Order()[0])
	require.NotNil(t, doc.Endpoints)
	assert.Equal(t, DefaultEndpoints().Geocoding, doc.Endpoints.Geocoding)
}

func TestEncodeManifestOmitsSource(t *testing.T) {
	doc := &WidgetManifestDocument{Version: ManifestVersion, Source: "/tmp/x.yml"}
	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))
	assert.NotContains(t, buf.String(), "/tmp/x.yml")
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		reg := NewRegistry()
		require.NoErrorf(t, reg.LoadManifestDocument(doc), "manifest %s should apply", path)
		for _, code := range doc.Order() {
			_, ok := reg.Definition(code)
			assert.Truef(t, ok, "manifest %s lays out unknown widget %s", path, code)
		}
	}
}
