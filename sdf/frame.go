package sdf

// Frame is the SDF <frame> element: a named, non-structural frame attached to
// another link, frame, joint, or model of the same description.
type Frame struct {
	Name       string `xml:"name,attr"`
	AttachedTo string `xml:"attached_to,attr,omitempty"`
	Pose       *Pose  `xml:"pose,omitempty"`
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := *f
	out.Pose = f.Pose.Clone()
	return &out
}
