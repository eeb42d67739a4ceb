package sdf

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/robodesc/robodesc/spatialmath"
)

// Pose is the SDF <pose> element: a 6-vector (x y z roll pitch yaw) expressed
// relative to a named frame. An empty RelativeTo means the element's implicit
// default frame; ResolveFrames makes the reference explicit.
type Pose struct {
	P [6]float64

	RelativeTo     string
	Degrees        bool
	RotationFormat string
}

// NewPose returns a zero pose expressed relative to the given frame.
func NewPose(relativeTo string) *Pose {
	return &Pose{RelativeTo: relativeTo}
}

// Xyz returns the translation components of the pose.
func (p *Pose) Xyz() mgl64.Vec3 {
	return mgl64.Vec3{p.P[0], p.P[1], p.P[2]}
}

// Rpy returns the roll-pitch-yaw components of the pose in radians,
// converting from degrees if the pose was declared that way.
func (p *Pose) Rpy() mgl64.Vec3 {
	rpy := mgl64.Vec3{p.P[3], p.P[4], p.P[5]}
	if p.Degrees {
		return spatialmath.DegreesToRadians(rpy)
	}
	return rpy
}

// Transform builds the 4x4 homogeneous transform described by the pose.
func (p *Pose) Transform() mgl64.Mat4 {
	return spatialmath.NewTransformFromPose(p.Xyz(), p.Rpy())
}

// PoseFromTransform extracts a pose from a rigid transform, tagged with the
// given reference frame. Angles are always emitted in radians.
func PoseFromTransform(t mgl64.Mat4, relativeTo string) *Pose {
	xyz := spatialmath.Translation(t)
	rpy := spatialmath.MatToEulerXYZ(t)
	return &Pose{
		P:          [6]float64{xyz.X(), xyz.Y(), xyz.Z(), rpy.X(), rpy.Y(), rpy.Z()},
		RelativeTo: relativeTo,
	}
}

// IsTrivial reports whether the pose is numerically zero within tol.
func (p *Pose) IsTrivial(tol float64) bool {
	for _, v := range p.P {
		if v > tol || v < -tol {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the pose.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

type xmlPose struct {
	Text           string `xml:",chardata"`
	RelativeTo     string `xml:"relative_to,attr,omitempty"`
	Degrees        *bool  `xml:"degrees,attr,omitempty"`
	RotationFormat string `xml:"rotation_format,attr,omitempty"`
}

// UnmarshalXML parses the space-delimited 6-vector plus attributes. A missing
// body is treated as a zero pose; anything other than six numbers is an error.
func (p *Pose) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var aux xmlPose
	if err := d.DecodeElement(&aux, &start); err != nil {
		return err
	}

	p.RelativeTo = aux.RelativeTo
	p.RotationFormat = aux.RotationFormat
	if aux.Degrees != nil {
		p.Degrees = *aux.Degrees
	}

	if strings.TrimSpace(aux.Text) == "" {
		p.P = [6]float64{}
		return nil
	}

	values, err := floatsFromString(aux.Text)
	if err != nil {
		return err
	}
	if len(values) != 6 {
		return NewShapeError("pose", 6, len(values))
	}
	copy(p.P[:], values)
	return nil
}

// MarshalXML serializes the pose back to its space-delimited form.
func (p *Pose) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	aux := xmlPose{
		Text:           floatsToString(p.P[:]),
		RelativeTo:     p.RelativeTo,
		RotationFormat: p.RotationFormat,
	}
	if p.Degrees {
		degrees := true
		aux.Degrees = &degrees
	}
	return e.EncodeElement(aux, start)
}

// floatsFromString splits up space-delimited numeric fields, such as the
// bodies of pose or xyz elements.
func floatsFromString(s string) ([]float64, error) {
	var converted []float64
	for _, field := range strings.Fields(s) {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric field %q", field)
		}
		converted = append(converted, value)
	}
	return converted, nil
}

func floatsToString(values []float64) string {
	fields := make([]string, 0, len(values))
	for _, v := range values {
		fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(fields, " ")
}
