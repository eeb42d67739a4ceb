package sdf

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Inertia is the SDF <inertia> element: the six independent components of a
// symmetric 3x3 inertia tensor.
type Inertia struct {
	Ixx float64 `xml:"ixx"`
	Iyy float64 `xml:"iyy"`
	Izz float64 `xml:"izz"`
	Ixy float64 `xml:"ixy"`
	Ixz float64 `xml:"ixz"`
	Iyz float64 `xml:"iyz"`
}

// Matrix expands the six components into the full symmetric tensor.
func (i *Inertia) Matrix() mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{i.Ixx, i.Ixy, i.Ixz},
		mgl64.Vec3{i.Ixy, i.Iyy, i.Iyz},
		mgl64.Vec3{i.Ixz, i.Iyz, i.Izz},
	)
}

// InertiaFromMatrix builds an Inertia from a full tensor, checking that the
// principal moments satisfy the triangle inequality.
func InertiaFromMatrix(m mgl64.Mat3) (*Inertia, error) {
	i1, i2, i3 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	if i1+i2 < i3 || i1+i3 < i2 || i2+i3 < i1 {
		return nil, errors.New("inertia tensor does not meet the triangle inequality")
	}

	return &Inertia{
		Ixx: m.At(0, 0), Ixy: m.At(0, 1), Ixz: m.At(0, 2),
		Iyy: m.At(1, 1), Iyz: m.At(1, 2),
		Izz: m.At(2, 2),
	}, nil
}

// Inertial is the SDF <inertial> element of a link.
type Inertial struct {
	Mass    float64  `xml:"mass"`
	Inertia *Inertia `xml:"inertia,omitempty"`
	Pose    *Pose    `xml:"pose,omitempty"`
}

// Clone returns a deep copy of the inertial block.
func (i *Inertial) Clone() *Inertial {
	if i == nil {
		return nil
	}
	out := *i
	out.Pose = i.Pose.Clone()
	if i.Inertia != nil {
		inertia := *i.Inertia
		out.Inertia = &inertia
	}
	return &out
}

// Link is the SDF <link> element.
type Link struct {
	Name string `xml:"name,attr"`

	Pose     *Pose     `xml:"pose,omitempty"`
	Inertial *Inertial `xml:"inertial,omitempty"`

	Visuals    []*Visual    `xml:"visual,omitempty"`
	Collisions []*Collision `xml:"collision,omitempty"`

	Gravity        *bool `xml:"gravity,omitempty"`
	EnableWind     *bool `xml:"enable_wind,omitempty"`
	SelfCollide    *bool `xml:"self_collide,omitempty"`
	Kinematic      *bool `xml:"kinematic,omitempty"`
	MustBeBaseLink *bool `xml:"must_be_base_link,omitempty"`
}

// Clone returns a deep copy of the link.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	out := *l
	out.Pose = l.Pose.Clone()
	out.Inertial = l.Inertial.Clone()
	out.Visuals = make([]*Visual, 0, len(l.Visuals))
	for _, v := range l.Visuals {
		out.Visuals = append(out.Visuals, v.Clone())
	}
	out.Collisions = make([]*Collision, 0, len(l.Collisions))
	for _, c := range l.Collisions {
		out.Collisions = append(out.Collisions, c.Clone())
	}
	return &out
}
