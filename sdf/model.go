package sdf

// Reserved frame names recognized by the kinematics pipeline.
const (
	// World is the implicit universal root frame.
	World = "world"
	// ModelFrame is the reserved name of a model's own implicit frame,
	// attached to its canonical link.
	ModelFrame = "__model__"
)

// Model is the SDF <model> element.
type Model struct {
	Name           string `xml:"name,attr"`
	CanonicalName  string `xml:"canonical_link,attr,omitempty"`
	PlacementFrame string `xml:"placement_frame,attr,omitempty"`

	Static           *bool `xml:"static,omitempty"`
	SelfCollide      *bool `xml:"self_collide,omitempty"`
	AllowAutoDisable *bool `xml:"allow_auto_disable,omitempty"`
	EnableWind       *bool `xml:"enable_wind,omitempty"`

	Pose *Pose `xml:"pose,omitempty"`

	Models []*Model `xml:"model,omitempty"`
	Frames []*Frame `xml:"frame,omitempty"`
	Links  []*Link  `xml:"link,omitempty"`
	Joints []*Joint `xml:"joint,omitempty"`
}

// IsFixedBase reports whether the model is anchored to the world through a
// joint whose parent is the reserved "world" frame. Validation of the exact
// joint count happens during kinematic-tree construction.
func (m *Model) IsFixedBase() bool {
	for _, j := range m.Joints {
		if j.Parent == World {
			return true
		}
	}
	return false
}

// CanonicalLink returns the name of the model's canonical link: the declared
// one if present (which must reference an existing link), else the first
// declared link.
func (m *Model) CanonicalLink() (string, error) {
	if m.CanonicalName != "" {
		for _, l := range m.Links {
			if l.Name == m.CanonicalName {
				return m.CanonicalName, nil
			}
		}
		return "", NewCanonicalLinkNotFoundError(m.Name, m.CanonicalName)
	}

	if len(m.Links) == 0 {
		return "", NewNoLinksError(m.Name)
	}
	return m.Links[0].Name, nil
}

// LinkByName returns the named link, or nil if absent.
func (m *Model) LinkByName(name string) *Link {
	for _, l := range m.Links {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// JointByName returns the named joint, or nil if absent.
func (m *Model) JointByName(name string) *Joint {
	for _, j := range m.Joints {
		if j.Name == name {
			return j
		}
	}
	return nil
}

// FrameByName returns the named frame, or nil if absent.
func (m *Model) FrameByName(name string) *Frame {
	for _, f := range m.Frames {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddFrame appends a frame to the model.
func (m *Model) AddFrame(f *Frame) {
	m.Frames = append(m.Frames, f)
}

// Clone returns a deep copy of the model, including nested sub-models.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.Pose = m.Pose.Clone()
	out.Models = make([]*Model, 0, len(m.Models))
	for _, sub := range m.Models {
		out.Models = append(out.Models, sub.Clone())
	}
	out.Frames = make([]*Frame, 0, len(m.Frames))
	for _, f := range m.Frames {
		out.Frames = append(out.Frames, f.Clone())
	}
	out.Links = make([]*Link, 0, len(m.Links))
	for _, l := range m.Links {
		out.Links = append(out.Links, l.Clone())
	}
	out.Joints = make([]*Joint, 0, len(m.Joints))
	for _, j := range m.Joints {
		out.Joints = append(out.Joints, j.Clone())
	}
	return &out
}
