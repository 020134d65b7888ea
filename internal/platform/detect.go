package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using the Go runtime and the kernel.
type RealDetector struct {
	goos    string
	goarch  string
	machine func() (string, error)
}

// NewDetector creates a new platform detector for the running host.
func NewDetector() Detector {
	return &RealDetector{
		goos:    runtime.GOOS,
		goarch:  runtime.GOARCH,
		machine: host.KernelArch,
	}
}

// Detect resolves the Target for the running host.
//
// The machine string comes from the kernel (uname on POSIX, the native
// system info on Windows) so that a 32-bit or emulated build of the
// installer still picks the asset matching the machine. If the kernel
// query fails, runtime.GOARCH is translated to a machine string instead.
func (d *RealDetector) Detect(ctx context.Context) (Target, error) {
	if err := ctx.Err(); err != nil {
		return Target{}, err
	}

	machine := ""
	if d.machine != nil {
		if m, err := d.machine(); err == nil {
			machine = strings.TrimSpace(m)
		}
	}
	if machine == "" {
		machine = goarchMachine(d.goarch)
	}

	return Resolve(d.goos, machine)
}

// Distro describes the Linux distribution of the host.
type Distro struct {
	ID      string // e.g. "ubuntu"
	Family  string // canonical family, e.g. "debian"
	Version string // e.g. "22.04"
}

// DetectDistro returns Linux distribution details, or nil on other
// platforms or when detection fails. It is informational only.
func DetectDistro(ctx context.Context) *Distro {
	if runtime.GOOS != "linux" {
		return nil
	}

	id, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		return nil
	}

	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil
	}

	return &Distro{
		ID:      id,
		Family:  mapFamily(family),
		Version: strings.ToLower(strings.TrimSpace(version)),
	}
}
