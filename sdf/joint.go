package sdf

// Joint types understood by the processing pipeline. SDF defines more, but
// only the ones below survive a URDF export.
const (
	JointTypeRevolute   = "revolute"
	JointTypeContinuous = "continuous"
	JointTypePrismatic  = "prismatic"
	JointTypeFixed      = "fixed"
	JointTypeBall       = "ball"
	JointTypeUniversal  = "universal"
)

// Limit is the SDF <limit> element of a joint axis.
type Limit struct {
	Lower       *float64 `xml:"lower,omitempty"`
	Upper       *float64 `xml:"upper,omitempty"`
	Effort      *float64 `xml:"effort,omitempty"`
	Velocity    *float64 `xml:"velocity,omitempty"`
	Stiffness   *float64 `xml:"stiffness,omitempty"`
	Dissipation *float64 `xml:"dissipation,omitempty"`
}

// Dynamics is the SDF <dynamics> element of a joint axis.
type Dynamics struct {
	SpringReference float64  `xml:"spring_reference"`
	SpringStiffness float64  `xml:"spring_stiffness"`
	Damping         *float64 `xml:"damping,omitempty"`
	Friction        *float64 `xml:"friction,omitempty"`
}

// Axis is the SDF <axis> element of a joint.
type Axis struct {
	Xyz      *Vector3  `xml:"xyz,omitempty"`
	Limit    *Limit    `xml:"limit,omitempty"`
	Dynamics *Dynamics `xml:"dynamics,omitempty"`
}

// Joint is the SDF <joint> element connecting a parent link to a child link.
type Joint struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`

	Parent string `xml:"parent"`
	Child  string `xml:"child"`

	Pose *Pose `xml:"pose,omitempty"`
	Axis *Axis `xml:"axis,omitempty"`
}

// Clone returns a deep copy of the joint.
func (j *Joint) Clone() *Joint {
	if j == nil {
		return nil
	}
	out := *j
	out.Pose = j.Pose.Clone()
	if j.Axis != nil {
		axis := *j.Axis
		if j.Axis.Xyz != nil {
			xyz := *j.Axis.Xyz
			axis.Xyz = &xyz
		}
		if j.Axis.Limit != nil {
			limit := *j.Axis.Limit
			axis.Limit = &limit
		}
		if j.Axis.Dynamics != nil {
			dynamics := *j.Axis.Dynamics
			axis.Dynamics = &dynamics
		}
		out.Axis = &axis
	}
	return &out
}
