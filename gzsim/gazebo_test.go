package gzsim

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestExecutableNotFound(t *testing.T) {
	t.Setenv("PATH", "")

	h := NewHelper()
	_, err := h.Executable()
	test.That(t, err, test.ShouldEqual, ErrGazeboNotFound)
	test.That(t, h.HasGazebo(), test.ShouldBeFalse)
}

func TestProcessServesFromCache(t *testing.T) {
	t.Setenv("PATH", "")

	description := "<sdf version='1.10'><model name='m'><link name='a'/></model></sdf>"
	sum := sha256.Sum256([]byte(description))

	h := NewHelper()
	h.cache[hex.EncodeToString(sum[:])] = "normalized"

	// A cache hit never needs the executable.
	out, err := h.ProcessModelDescription(description)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "normalized")
}

func TestProcessReadsPathArguments(t *testing.T) {
	t.Setenv("PATH", "")

	description := "<sdf version='1.10'><model name='m'><link name='a'/></model></sdf>"
	path := filepath.Join(t.TempDir(), "model.sdf")
	test.That(t, os.WriteFile(path, []byte(description), 0o600), test.ShouldBeNil)

	// The cache is keyed by file content, not by the path argument.
	sum := sha256.Sum256([]byte(description))
	h := NewHelper()
	h.cache[hex.EncodeToString(sum[:])] = "normalized"

	out, err := h.ProcessModelDescription(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "normalized")
}

func TestProcessWithoutGazebo(t *testing.T) {
	t.Setenv("PATH", "")

	h := NewHelper()
	_, err := h.ProcessModelDescription("<sdf/>")
	test.That(t, err, test.ShouldEqual, ErrGazeboNotFound)

	err = h.CheckDescription("<sdf/>")
	test.That(t, err, test.ShouldEqual, ErrGazeboNotFound)
}
