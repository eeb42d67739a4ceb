// Package urdf converts an in-memory SDF model to a URDF document. URDF has
// no notion of frames attached to joints or other frames and expresses every
// pose relative to the parent joint, so the conversion goes through the Urdf
// frame convention with frames re-attached to links first.
package urdf

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/robodesc/robodesc/kinematics"
	"github.com/robodesc/robodesc/sdf"
)

// SupportedJointTypes are the SDF joint types that survive a URDF export.
var SupportedJointTypes = map[string]bool{
	sdf.JointTypeRevolute:   true,
	sdf.JointTypeContinuous: true,
	sdf.JointTypePrismatic:  true,
	sdf.JointTypeFixed:      true,
}

// Exporter converts SDF models to URDF strings.
type Exporter struct {
	// Pretty enables indented output.
	Pretty bool
	// Indent is the string used per indentation level when Pretty is set.
	Indent string

	// GazeboPreserveFixedJoints lists fixed joints that get a <gazebo>
	// extension preventing Gazebo from lumping them away on re-import.
	GazeboPreserveFixedJoints []string
	// PreserveAllFixedJoints preserves every fixed joint of the model.
	PreserveAllFixedJoints bool
}

type urdfOrigin struct {
	Xyz string `xml:"xyz,attr"`
	Rpy string `xml:"rpy,attr"`
}

type urdfMass struct {
	Value float64 `xml:"value,attr"`
}

type urdfInertia struct {
	Ixx float64 `xml:"ixx,attr"`
	Ixy float64 `xml:"ixy,attr"`
	Ixz float64 `xml:"ixz,attr"`
	Iyy float64 `xml:"iyy,attr"`
	Iyz float64 `xml:"iyz,attr"`
	Izz float64 `xml:"izz,attr"`
}

type urdfInertial struct {
	Origin  urdfOrigin  `xml:"origin"`
	Mass    urdfMass    `xml:"mass"`
	Inertia urdfInertia `xml:"inertia"`
}

type urdfBox struct {
	Size string `xml:"size,attr"`
}

type urdfCylinder struct {
	Radius float64 `xml:"radius,attr"`
	Length float64 `xml:"length,attr"`
}

type urdfSphere struct {
	Radius float64 `xml:"radius,attr"`
}

type urdfMesh struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr,omitempty"`
}

type urdfGeometry struct {
	Box      *urdfBox      `xml:"box,omitempty"`
	Cylinder *urdfCylinder `xml:"cylinder,omitempty"`
	Sphere   *urdfSphere   `xml:"sphere,omitempty"`
	Mesh     *urdfMesh     `xml:"mesh,omitempty"`
}

type urdfColor struct {
	Rgba string `xml:"rgba,attr"`
}

type urdfMaterial struct {
	Name  string    `xml:"name,attr"`
	Color urdfColor `xml:"color"`
}

type urdfVisual struct {
	Name     string        `xml:"name,attr,omitempty"`
	Origin   urdfOrigin    `xml:"origin"`
	Geometry urdfGeometry  `xml:"geometry"`
	Material *urdfMaterial `xml:"material,omitempty"`
}

type urdfCollision struct {
	Name     string       `xml:"name,attr,omitempty"`
	Origin   urdfOrigin   `xml:"origin"`
	Geometry urdfGeometry `xml:"geometry"`
}

type urdfLink struct {
	Name       string          `xml:"name,attr"`
	Inertial   *urdfInertial   `xml:"inertial,omitempty"`
	Visuals    []urdfVisual    `xml:"visual,omitempty"`
	Collisions []urdfCollision `xml:"collision,omitempty"`
}

type urdfLinkRef struct {
	Link string `xml:"link,attr"`
}

type urdfAxis struct {
	Xyz string `xml:"xyz,attr"`
}

type urdfDynamics struct {
	Damping  *float64 `xml:"damping,attr,omitempty"`
	Friction *float64 `xml:"friction,attr,omitempty"`
}

type urdfLimit struct {
	Lower    *float64 `xml:"lower,attr,omitempty"`
	Upper    *float64 `xml:"upper,attr,omitempty"`
	Effort   float64  `xml:"effort,attr"`
	Velocity float64  `xml:"velocity,attr"`
}

type urdfJoint struct {
	Name     string        `xml:"name,attr"`
	Type     string        `xml:"type,attr"`
	Origin   urdfOrigin    `xml:"origin"`
	Parent   urdfLinkRef   `xml:"parent"`
	Child    urdfLinkRef   `xml:"child"`
	Axis     *urdfAxis     `xml:"axis,omitempty"`
	Dynamics *urdfDynamics `xml:"dynamics,omitempty"`
	Limit    *urdfLimit    `xml:"limit,omitempty"`
}

type gazeboExtension struct {
	Reference                string `xml:"reference,attr"`
	PreserveFixedJoint       bool   `xml:"preserveFixedJoint"`
	DisableFixedJointLumping bool   `xml:"disableFixedJointLumping"`
}

type urdfRobot struct {
	XMLName xml.Name          `xml:"robot"`
	Name    string            `xml:"name,attr"`
	Links   []urdfLink        `xml:"link"`
	Joints  []urdfJoint       `xml:"joint"`
	Gazebos []gazeboExtension `xml:"gazebo,omitempty"`
}

// ToURDFStringFromRoot exports the single model of an SDF document. Documents
// with more than one model are rejected, as URDF supports one robot element.
func (e *Exporter) ToURDFStringFromRoot(root *sdf.Root) (string, error) {
	models := root.AllModels()
	if len(models) != 1 {
		return "", errors.Errorf("URDF only supports one robot element, document has %d models", len(models))
	}
	return e.ToURDFString(models[0])
}

// ToURDFString converts an SDF model to a URDF string. The input model is
// deep-copied and never mutated.
func (e *Exporter) ToURDFString(model *sdf.Model) (string, error) {
	model, err := e.prepareModel(model)
	if err != nil {
		return "", err
	}

	extraLinks, extraJoints, err := framesToDummyChains(model)
	if err != nil {
		return "", err
	}

	preserved, err := e.preservedFixedJoints(model)
	if err != nil {
		return "", err
	}

	robot := urdfRobot{Name: model.Name}
	if model.IsFixedBase() {
		robot.Links = append(robot.Links, urdfLink{Name: sdf.World})
	}
	for _, link := range model.Links {
		robot.Links = append(robot.Links, linkElement(link))
	}
	robot.Links = append(robot.Links, extraLinks...)

	for _, joint := range model.Joints {
		if !SupportedJointTypes[joint.Type] {
			golog.Global.Warnf("joint %q has type %q not supported by URDF, skipping", joint.Name, joint.Type)
			continue
		}
		robot.Joints = append(robot.Joints, jointElement(joint))
	}
	robot.Joints = append(robot.Joints, extraJoints...)

	for _, name := range preserved {
		robot.Gazebos = append(robot.Gazebos, gazeboExtension{
			Reference:                name,
			PreserveFixedJoint:       true,
			DisableFixedJointLumping: true,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if e.Pretty {
		indent := e.Indent
		if indent == "" {
			indent = "  "
		}
		enc.Indent("", indent)
	}
	if err := enc.Encode(robot); err != nil {
		return "", errors.Wrap(err, "failed to serialize URDF document")
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// prepareModel validates the model pose, switches the copy to the Urdf frame
// convention with frames attached to links, and clears link poses, which URDF
// implies through the parent joint.
func (e *Exporter) prepareModel(model *sdf.Model) (*sdf.Model, error) {
	model = model.Clone()

	if len(model.Models) > 0 {
		golog.Global.Warnf("ignoring unsupported sub-models of model %q", model.Name)
		model.Models = nil
	}

	if model.Pose != nil && model.Pose.RelativeTo != "" {
		return nil, errors.Errorf("model %q has a pose relative to %q, cannot export as top-level URDF robot",
			model.Name, model.Pose.RelativeTo)
	}
	if model.IsFixedBase() && model.Pose != nil && !model.Pose.IsTrivial(1e-9) {
		golog.Global.Warnf("ignoring non-trivial pose of fixed-base model %q", model.Name)
		model.Pose = nil
	}

	canonical, err := model.CanonicalLink()
	if err != nil {
		return nil, err
	}
	if !model.IsFixedBase() {
		if link := model.LinkByName(canonical); link.Pose != nil && !link.Pose.IsTrivial(1e-9) {
			golog.Global.Warnf("ignoring non-trivial pose of canonical link %q", canonical)
			link.Pose = nil
		}
	}

	model, err = kinematics.SwitchFrameConvention(model, kinematics.FrameConventionUrdf, true, true)
	if err != nil {
		return nil, err
	}

	// URDF links carry no origin; whatever is left in a link pose after the
	// convention switch cannot be represented.
	for _, link := range model.Links {
		if link.Pose != nil && !link.Pose.IsTrivial(1e-9) {
			golog.Global.Warnf("ignoring non-trivial pose of link %q", link.Name)
		}
		link.Pose = nil
	}
	return model, nil
}

// framesToDummyChains converts every SDF frame to a massless dummy link plus
// a fixed joint hanging it off the frame's attachment link.
func framesToDummyChains(model *sdf.Model) ([]urdfLink, []urdfJoint, error) {
	var links []urdfLink
	var joints []urdfJoint

	for _, frame := range model.Frames {
		if frame.Pose == nil || frame.Pose.RelativeTo != frame.AttachedTo {
			return nil, nil, errors.Errorf(
				"frame %q is not expressed relative to its attachment %q", frame.Name, frame.AttachedTo)
		}

		links = append(links, urdfLink{
			Name: frame.Name,
			Inertial: &urdfInertial{
				Origin: zeroOrigin(),
				Mass:   urdfMass{Value: 0},
			},
		})
		joints = append(joints, urdfJoint{
			Name:   frame.AttachedTo + "_to_" + frame.Name,
			Type:   sdf.JointTypeFixed,
			Origin: originFromPose(frame.Pose),
			Parent: urdfLinkRef{Link: frame.AttachedTo},
			Child:  urdfLinkRef{Link: frame.Name},
		})
		golog.Global.Debugf("frame %q became dummy chain %s->%s", frame.Name, frame.AttachedTo, frame.Name)
	}
	return links, joints, nil
}

// preservedFixedJoints resolves the preserve options to a validated list of
// joint names.
func (e *Exporter) preservedFixedJoints(model *sdf.Model) ([]string, error) {
	if e.PreserveAllFixedJoints {
		var names []string
		for _, j := range model.Joints {
			if j.Type == sdf.JointTypeFixed {
				names = append(names, j.Name)
			}
		}
		return names, nil
	}

	for _, name := range e.GazeboPreserveFixedJoints {
		if model.JointByName(name) == nil {
			return nil, errors.Errorf("joint %q not found in the model", name)
		}
	}
	return e.GazeboPreserveFixedJoints, nil
}

func linkElement(link *sdf.Link) urdfLink {
	out := urdfLink{Name: link.Name}

	if link.Inertial != nil {
		inertial := &urdfInertial{
			Origin: originFromPose(link.Inertial.Pose),
			Mass:   urdfMass{Value: link.Inertial.Mass},
		}
		if i := link.Inertial.Inertia; i != nil {
			inertial.Inertia = urdfInertia{
				Ixx: i.Ixx, Ixy: i.Ixy, Ixz: i.Ixz,
				Iyy: i.Iyy, Iyz: i.Iyz, Izz: i.Izz,
			}
		}
		out.Inertial = inertial
	}

	for _, visual := range link.Visuals {
		out.Visuals = append(out.Visuals, urdfVisual{
			Name:     visual.Name,
			Origin:   originFromPose(visual.Pose),
			Geometry: geometryElement(visual.Geometry),
			Material: materialElement(visual.Material),
		})
	}
	for _, collision := range link.Collisions {
		out.Collisions = append(out.Collisions, urdfCollision{
			Name:     collision.Name,
			Origin:   originFromPose(collision.Pose),
			Geometry: geometryElement(collision.Geometry),
		})
	}
	return out
}

func jointElement(joint *sdf.Joint) urdfJoint {
	out := urdfJoint{
		Name:   joint.Name,
		Type:   joint.Type,
		Origin: originFromPose(joint.Pose),
		Parent: urdfLinkRef{Link: joint.Parent},
		Child:  urdfLinkRef{Link: joint.Child},
	}
	if joint.Type == sdf.JointTypeFixed || joint.Axis == nil {
		return out
	}

	if joint.Axis.Xyz != nil {
		v := joint.Axis.Xyz.V
		out.Axis = &urdfAxis{Xyz: vectorString(v.X, v.Y, v.Z)}
	}
	if d := joint.Axis.Dynamics; d != nil && (d.Damping != nil || d.Friction != nil) {
		out.Dynamics = &urdfDynamics{Damping: d.Damping, Friction: d.Friction}
	}
	if l := joint.Axis.Limit; l != nil &&
		(joint.Type == sdf.JointTypeRevolute || joint.Type == sdf.JointTypePrismatic) {
		out.Limit = &urdfLimit{
			Lower:    l.Lower,
			Upper:    l.Upper,
			Effort:   floatOrDefault(l.Effort, math.MaxFloat32),
			Velocity: floatOrDefault(l.Velocity, math.MaxFloat32),
		}
	}
	return out
}

func geometryElement(g *sdf.Geometry) urdfGeometry {
	var out urdfGeometry
	if g == nil {
		return out
	}
	switch {
	case g.Box != nil:
		v := g.Box.Size.V
		out.Box = &urdfBox{Size: vectorString(v.X, v.Y, v.Z)}
	case g.Cylinder != nil:
		out.Cylinder = &urdfCylinder{Radius: g.Cylinder.Radius, Length: g.Cylinder.Length}
	case g.Sphere != nil:
		out.Sphere = &urdfSphere{Radius: g.Sphere.Radius}
	case g.Mesh != nil:
		mesh := &urdfMesh{Filename: g.Mesh.URI}
		if g.Mesh.Scale != nil {
			s := g.Mesh.Scale.V
			mesh.Scale = vectorString(s.X, s.Y, s.Z)
		}
		out.Mesh = mesh
	}
	return out
}

// materialElement maps an SDF material to a URDF one; materials without a
// diffuse color fall back to a default white material.
func materialElement(m *sdf.Material) *urdfMaterial {
	if m == nil {
		return nil
	}
	if m.Diffuse == nil {
		golog.Global.Debugf("material diffuse color not defined, using default material")
		return &urdfMaterial{Name: "default_material", Color: urdfColor{Rgba: "1 1 1 1"}}
	}
	rgba := strings.Join(strings.Fields(m.Diffuse.Text), " ")
	return &urdfMaterial{Name: "color_" + strings.ReplaceAll(rgba, " ", "_"), Color: urdfColor{Rgba: rgba}}
}

func originFromPose(p *sdf.Pose) urdfOrigin {
	if p == nil {
		return zeroOrigin()
	}
	xyz := p.Xyz()
	rpy := p.Rpy()
	return urdfOrigin{
		Xyz: vectorString(xyz.X(), xyz.Y(), xyz.Z()),
		Rpy: vectorString(rpy.X(), rpy.Y(), rpy.Z()),
	}
}

func zeroOrigin() urdfOrigin {
	return urdfOrigin{Xyz: "0 0 0", Rpy: "0 0 0"}
}

func vectorString(values ...float64) string {
	fields := make([]string, 0, len(values))
	for _, v := range values {
		fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(fields, " ")
}

func floatOrDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
