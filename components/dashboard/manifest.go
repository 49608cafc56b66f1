package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// WidgetManifestDocument models a YAML manifest that renames, reorders,
// disables or re-parameterizes the built-in widgets. Layout lists the mounted
// widget codes in display order.
type WidgetManifestDocument struct {
	Version   string           `json:"version" yaml:"version"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Endpoints *Endpoints       `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Layout    []string         `json:"layout,omitempty" yaml:"layout,omitempty"`
	Widgets   []ManifestWidget `json:"widgets" yaml:"widgets"`
	Source    string           `json:"-" yaml:"-"`
}

// ManifestWidget describes a single widget entry within a manifest. Blank
// definition fields keep the registered value; Disabled always applies.
type ManifestWidget struct {
	Definition WidgetDefinition `json:"definition" yaml:"definition"`
	Tags       []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LoadManifestFile reads a manifest from disk, applies it to the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument merges manifest entries over the registered definitions.
// Unknown codes are registered as new definitions.
func (r *Registry) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, widget := range doc.Widgets {
		def := widget.Definition
		if current, ok := r.Definition(def.Code); ok {
			def = mergeDefinition(current, def)
		}
		if err := r.RegisterDefinition(def); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", def.Code, doc.Source, err)
		}
	}
	return nil
}

// Order returns the manifest layout; nil keeps registration order.
func (doc *WidgetManifestDocument) Order() []string {
	if doc == nil || len(doc.Layout) == 0 {
		return nil
	}
	return append([]string(nil), doc.Layout...)
}

func mergeDefinition(base, override WidgetDefinition) WidgetDefinition {
	out := cloneDefinition(base)
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Category != "" {
		out.Category = override.Category
	}
	if override.DefaultInput != "" {
		out.DefaultInput = override.DefaultInput
	}
	if override.InputField != "" {
		out.InputField = override.InputField
	}
	if len(override.Schema) > 0 {
		out.Schema = cloneDefinition(override).Schema
	}
	out.Disabled = override.Disabled
	return out
}

// DefaultManifest describes the built-in widgets and endpoints.
func DefaultManifest() *WidgetManifestDocument {
	endpoints := DefaultEndpoints()
	doc := &WidgetManifestDocument{
		Version:   ManifestVersion,
		Name:      "apidash",
		Endpoints: &endpoints,
	}
	for _, def := range DefaultWidgetDefinitions() {
		doc.Layout = append(doc.Layout, def.Code)
		doc.Widgets = append(doc.Widgets, ManifestWidget{Definition: def})
	}
	return doc
}

// ReadManifest loads a manifest file from disk without applying it.
func ReadManifest(path string) (*WidgetManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*WidgetManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc WidgetManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *WidgetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	out := *doc
	out.Source = ""
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("dashboard: write manifest: %w", err)
	}
	return encoder.Close()
}

// WriteManifestFile writes doc to path, creating parent directories.
func WriteManifestFile(path string, doc *WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashboard: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashboard: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return EncodeManifest(file, doc)
}

// Validate ensures the manifest satisfies required fields.
func (doc *WidgetManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		if widget.Definition.Code == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing definition.code", idx)
		}
		if _, exists := seen[widget.Definition.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget code %s", widget.Definition.Code)
		}
		seen[widget.Definition.Code] = struct{}{}
	}
	placed := make(map[string]struct{}, len(doc.Layout))
	for _, code := range doc.Layout {
		if code == "" {
			return fmt.Errorf("dashboard: manifest layout contains an empty code")
		}
		if _, exists := placed[code]; exists {
			return fmt.Errorf("dashboard: manifest layout duplicates widget code %s", code)
		}
		placed[code] = struct{}{}
	}
	return nil
}

func (doc *WidgetManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
