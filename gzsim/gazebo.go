// Package gzsim shells out to a locally installed Gazebo simulator to
// validate and normalize robot descriptions. This sits at the system
// boundary: the kinematics core never touches it.
package gzsim

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

const maxCacheSize = 128

// ErrGazeboNotFound is returned when neither the gz nor the ign executable is
// available in PATH.
var ErrGazeboNotFound = errors.New("failed to find either the 'gz' or 'ign' executable in PATH")

// Helper locates a Gazebo installation and processes model descriptions with
// its sdformat plugin, caching results by content hash.
type Helper struct {
	mu         sync.Mutex
	executable string
	cache      map[string]string
}

// NewHelper returns a Helper with an empty cache.
func NewHelper() *Helper {
	return &Helper{cache: map[string]string{}}
}

// Executable returns the path of the Gazebo executable, probing PATH for gz
// then ign on first use and verifying the sdf subcommand is installed.
func (h *Helper) Executable() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executableLocked()
}

func (h *Helper) executableLocked() (string, error) {
	if h.executable != "" {
		return h.executable, nil
	}

	var executable string
	for _, candidate := range []string{"gz", "ign"} {
		if path, err := exec.LookPath(candidate); err == nil {
			executable = path
			break
		}
	}
	if executable == "" {
		return "", ErrGazeboNotFound
	}

	if err := exec.Command(executable, "sdf", "--help").Run(); err != nil {
		return "", errors.Wrapf(err, "failed to find 'sdf' command part of %s installation", executable)
	}

	h.executable = executable
	return executable, nil
}

// HasGazebo reports whether a usable Gazebo installation is available.
func (h *Helper) HasGazebo() bool {
	_, err := h.Executable()
	return err == nil
}

// ProcessModelDescription runs a SDF/URDF document through Gazebo's sdformat
// processor, returning the normalized SDF output. Repeated content is served
// from the cache.
func (h *Helper) ProcessModelDescription(description string) (string, error) {
	// The argument may also be a path to a document on disk.
	if len(description) < 4096 {
		if data, err := os.ReadFile(description); err == nil {
			description = string(data)
		}
	}

	sum := sha256.Sum256([]byte(description))
	key := hex.EncodeToString(sum[:])

	h.mu.Lock()
	if cached, ok := h.cache[key]; ok {
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	out, err := h.process(description)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	if len(h.cache) >= maxCacheSize {
		h.cache = map[string]string{}
	}
	h.cache[key] = out
	h.mu.Unlock()
	return out, nil
}

func (h *Helper) process(description string) (string, error) {
	executable, err := h.Executable()
	if err != nil {
		return "", err
	}

	tmp := filepath.Join(os.TempDir(), "robodesc_sdf_"+strconv.Itoa(os.Getpid())+".xml")
	if err := os.WriteFile(tmp, []byte(description), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to stage description for gazebo")
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			golog.Global.Debugw("failed to remove staged description", "error", err)
		}
	}()

	out, err := exec.Command(executable, "sdf", "-p", tmp).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.Errorf("gazebo failed to process description: %s", string(exitErr.Stderr))
		}
		return "", errors.Wrap(err, "gazebo failed to process description")
	}
	return string(out), nil
}

// CheckDescription validates a SDF document with Gazebo's sdformat checker.
func (h *Helper) CheckDescription(description string) error {
	executable, err := h.Executable()
	if err != nil {
		return err
	}

	tmp := filepath.Join(os.TempDir(), "robodesc_check_"+strconv.Itoa(os.Getpid())+".xml")
	if err := os.WriteFile(tmp, []byte(description), 0o600); err != nil {
		return errors.Wrap(err, "failed to stage description for gazebo")
	}
	defer os.Remove(tmp) //nolint:errcheck

	if out, err := exec.Command(executable, "sdf", "-k", tmp).CombinedOutput(); err != nil {
		return errors.Errorf("gazebo rejected description: %s", string(out))
	}
	return nil
}
