package cli

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const pendulumSdf = `<?xml version="1.0"?>
<sdf version="1.10">
  <model name="pendulum">
    <link name="base"/>
    <link name="arm">
      <pose relative_to="base_to_arm">0 0 -0.5 0 0 0</pose>
    </link>
    <joint name="base_to_arm" type="revolute">
      <parent>base</parent>
      <child>arm</child>
      <pose relative_to="base">0 0 0.1 0 0 0</pose>
    </joint>
    <joint name="world_to_base" type="fixed">
      <parent>world</parent>
      <child>base</child>
      <pose>0 0 1 0 0 0</pose>
    </joint>
  </model>
</sdf>
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pendulum.sdf")
	test.That(t, os.WriteFile(path, []byte(pendulumSdf), 0o600), test.ShouldBeNil)
	return path
}

func TestRunRequiresFile(t *testing.T) {
	err := NewApp().Run([]string{"robodesc", "--show"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--file argument is required")
}

func TestRunConvertsToURDF(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "pendulum.urdf")

	err := NewApp().Run([]string{"robodesc", "-f", in, "-o", out})
	test.That(t, err, test.ShouldBeNil)

	data, err := os.ReadFile(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, `<robot name="pendulum">`)
	test.That(t, string(data), test.ShouldContainSubstring, `<link name="world">`)
}

func TestRunRoundTripsSdf(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "copy.sdf")

	err := NewApp().Run([]string{"robodesc", "-f", in, "-o", out})
	test.That(t, err, test.ShouldBeNil)

	data, err := os.ReadFile(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, `<model name="pendulum">`)
}

func TestRunRejectsUnknownExtension(t *testing.T) {
	in := writeFixture(t)

	err := NewApp().Run([]string{"robodesc", "-f", in, "-o", "model.txt"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported output file extension")
}

func TestRunMissingInput(t *testing.T) {
	err := NewApp().Run([]string{"robodesc", "-f", filepath.Join(t.TempDir(), "nope.sdf")})
	test.That(t, err, test.ShouldNotBeNil)
}
