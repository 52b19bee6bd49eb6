//go:build darwin

package detection

import (
	"path/filepath"
	"strings"
)

// fallbackPorts globs the /dev tree when the enumerator comes up
// empty. Callout (cu.*) devices are preferred over tty.* for
// exclusive access.
func fallbackPorts() ([]DeviceInfo, error) {
	var ports []DeviceInfo
	ports = appendCalloutDevices(ports)
	ports = appendTTYDevices(ports)
	return ports, nil
}

func appendCalloutDevices(ports []DeviceInfo) []DeviceInfo {
	matches, err := filepath.Glob("/dev/cu.*")
	if err != nil {
		return ports
	}

	for _, path := range matches {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "cu.Bluetooth") {
			continue
		}
		if shouldIncludeDarwinDevice(name) {
			ports = append(ports, DeviceInfo{
				Transport: "serial",
				Path:      path,
				Name:      name,
			})
		}
	}
	return ports
}

// appendTTYDevices adds tty.* devices that have no cu.* counterpart
func appendTTYDevices(ports []DeviceInfo) []DeviceInfo {
	matches, err := filepath.Glob("/dev/tty.*")
	if err != nil {
		return ports
	}

	for _, path := range matches {
		name := filepath.Base(path)
		if strings.HasPrefix(name, "tty.Bluetooth") {
			continue
		}
		if hasCalloutEquivalent(path, ports) {
			continue
		}
		if shouldIncludeDarwinDevice(name) {
			ports = append(ports, DeviceInfo{
				Transport: "serial",
				Path:      path,
				Name:      name,
			})
		}
	}
	return ports
}

func hasCalloutEquivalent(ttyPath string, ports []DeviceInfo) bool {
	cuPath := strings.Replace(ttyPath, "/dev/tty.", "/dev/cu.", 1)
	for _, p := range ports {
		if p.Path == cuPath {
			return true
		}
	}
	return false
}

// shouldIncludeDarwinDevice filters out obvious system devices while
// keeping the common USB-serial bridge names
func shouldIncludeDarwinDevice(deviceName string) bool {
	lowerName := strings.ToLower(deviceName)

	if strings.Contains(lowerName, "usbserial") {
		return true
	}

	goodPatterns := []string{
		"slab_usbtouart", // Silicon Labs CP210x
		"usbmodem",       // CDC-ACM devices
		"wchusbserial",   // WinChipHead CH340/CH341
	}
	for _, pattern := range goodPatterns {
		if strings.Contains(lowerName, pattern) {
			return true
		}
	}

	systemPatterns := []string{
		"console", "debug", "system", "kernel",
	}
	for _, sysPattern := range systemPatterns {
		if strings.Contains(lowerName, sysPattern) {
			return false
		}
	}
	return true
}
