package sdf

import (
	"encoding/xml"

	"github.com/golang/geo/r3"
)

// Vector3 is a space-delimited 3-vector element body, as used by box sizes,
// axis directions, and plane normals.
type Vector3 struct {
	V r3.Vector
}

// UnmarshalXML parses a space-delimited 3-vector, failing on any other shape.
func (v *Vector3) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var text string
	if err := d.DecodeElement(&text, &start); err != nil {
		return err
	}
	values, err := floatsFromString(text)
	if err != nil {
		return err
	}
	if len(values) != 3 {
		return NewShapeError(start.Name.Local, 3, len(values))
	}
	v.V = r3.Vector{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

// MarshalXML serializes the vector back to its space-delimited form.
func (v Vector3) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(floatsToString([]float64{v.V.X, v.V.Y, v.V.Z}), start)
}

// Box is the SDF <box> geometry.
type Box struct {
	Size Vector3 `xml:"size"`
}

// Cylinder is the SDF <cylinder> geometry.
type Cylinder struct {
	Radius float64 `xml:"radius"`
	Length float64 `xml:"length"`
}

// Sphere is the SDF <sphere> geometry.
type Sphere struct {
	Radius float64 `xml:"radius"`
}

// Plane is the SDF <plane> geometry.
type Plane struct {
	Normal *Vector3 `xml:"normal,omitempty"`
	Size   string   `xml:"size,omitempty"`
}

// Mesh is the SDF <mesh> geometry, referencing an external resource.
type Mesh struct {
	URI   string   `xml:"uri"`
	Scale *Vector3 `xml:"scale,omitempty"`
}

// Geometry is the SDF <geometry> element. Exactly one shape is set.
type Geometry struct {
	Box      *Box      `xml:"box,omitempty"`
	Cylinder *Cylinder `xml:"cylinder,omitempty"`
	Sphere   *Sphere   `xml:"sphere,omitempty"`
	Plane    *Plane    `xml:"plane,omitempty"`
	Mesh     *Mesh     `xml:"mesh,omitempty"`
}

// Color is an rgba color element body.
type Color struct {
	Text string `xml:",chardata"`
}

// Material is the SDF <material> element, trimmed to the fields the URDF
// exporter cares about.
type Material struct {
	Ambient  *Color `xml:"ambient,omitempty"`
	Diffuse  *Color `xml:"diffuse,omitempty"`
	Specular *Color `xml:"specular,omitempty"`
	Emissive *Color `xml:"emissive,omitempty"`
}

// Visual is the SDF <visual> element of a link.
type Visual struct {
	Name     string    `xml:"name,attr"`
	Pose     *Pose     `xml:"pose,omitempty"`
	Geometry *Geometry `xml:"geometry,omitempty"`
	Material *Material `xml:"material,omitempty"`
}

// Clone returns a deep copy of the visual.
func (v *Visual) Clone() *Visual {
	if v == nil {
		return nil
	}
	out := *v
	out.Pose = v.Pose.Clone()
	return &out
}

// Collision is the SDF <collision> element of a link.
type Collision struct {
	Name     string    `xml:"name,attr"`
	Pose     *Pose     `xml:"pose,omitempty"`
	Geometry *Geometry `xml:"geometry,omitempty"`
}

// Clone returns a deep copy of the collision.
func (c *Collision) Clone() *Collision {
	if c == nil {
		return nil
	}
	out := *c
	out.Pose = c.Pose.Clone()
	return &out
}
