// Package sdf holds the typed record model of an SDF robot description
// together with its XML (de)serialization and the frame-resolution pre-pass
// consumed by the kinematics engine.
package sdf

import (
	"bytes"
	"encoding/xml"
	"os"

	"github.com/pkg/errors"
)

// Root is the top-level <sdf> element of a description document.
type Root struct {
	XMLName xml.Name `xml:"sdf"`
	Version string   `xml:"version,attr"`

	Worlds []*World `xml:"world,omitempty"`
	Models []*Model `xml:"model,omitempty"`
}

// World is the SDF <world> element, trimmed to the parts the processing
// pipeline consumes.
type World struct {
	Name    string   `xml:"name,attr"`
	Gravity *Vector3 `xml:"gravity,omitempty"`
	Models  []*Model `xml:"model,omitempty"`
	Frames  []*Frame `xml:"frame,omitempty"`
}

// Load parses an SDF document from raw XML bytes.
func Load(data []byte) (*Root, error) {
	if len(data) == 0 {
		return nil, ErrNoModelInformation
	}

	root := &Root{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, errors.Wrap(err, "failed to parse SDF document")
	}
	return root, nil
}

// LoadFile reads and parses an SDF document from disk.
func LoadFile(path string) (*Root, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read SDF file")
	}
	return Load(data)
}

// AllModels returns the models declared directly in the document plus the
// ones declared inside worlds.
func (r *Root) AllModels() []*Model {
	models := make([]*Model, 0, len(r.Models))
	models = append(models, r.Models...)
	for _, w := range r.Worlds {
		models = append(models, w.Models...)
	}
	return models
}

// Serialize renders the document back to XML. With pretty set, the output is
// indented with two spaces per level.
func (r *Root) Serialize(pretty bool) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	if pretty {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return "", errors.Wrap(err, "failed to serialize SDF document")
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// String renders the document as indented XML, or an error note if the
// document cannot be serialized.
func (r *Root) String() string {
	s, err := r.Serialize(true)
	if err != nil {
		return "<sdf: " + err.Error() + ">"
	}
	return s
}
