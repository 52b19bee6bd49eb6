//go:build !windows && !darwin

package detection

import (
	"path/filepath"
)

// fallbackPorts globs the usual USB-serial device nodes when the
// enumerator comes up empty
func fallbackPorts() ([]DeviceInfo, error) {
	var ports []DeviceInfo
	for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			ports = append(ports, DeviceInfo{
				Transport: "serial",
				Path:      path,
				Name:      filepath.Base(path),
			})
		}
	}
	return ports, nil
}
