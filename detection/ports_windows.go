//go:build windows

package detection

import (
	"errors"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// fallbackPorts returns COM ports when the enumerator comes up empty.
// The registry gives a quick port list; SetupAPI adds USB metadata.
func fallbackPorts() ([]DeviceInfo, error) {
	registryPorts, registryErr := registryCOMPorts()
	setupAPIPorts, setupErr := setupAPICOMPorts()

	if registryErr != nil && setupErr != nil {
		return nil, errors.Join(registryErr, setupErr)
	}

	portMap := make(map[string]DeviceInfo)
	if registryErr == nil {
		for _, port := range registryPorts {
			portMap[port.Path] = port
		}
	}
	// SetupAPI entries win, they carry more metadata
	if setupErr == nil {
		for _, port := range setupAPIPorts {
			portMap[port.Path] = port
		}
	}

	ports := make([]DeviceInfo, 0, len(portMap))
	for _, port := range portMap {
		ports = append(ports, port)
	}
	return ports, nil
}

// registryCOMPorts lists COM ports from the SERIALCOMM registry key
func registryCOMPorts() ([]DeviceInfo, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	values, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, err
	}

	ports := make([]DeviceInfo, 0, len(values))
	for _, value := range values {
		portName, _, err := key.GetStringValue(value)
		if err != nil {
			continue
		}
		ports = append(ports, DeviceInfo{
			Transport: "serial",
			Path:      portName,
			Name:      portName,
		})
	}
	return ports, nil
}

// setupAPICOMPorts lists COM ports via SetupAPI with USB metadata
func setupAPICOMPorts() ([]DeviceInfo, error) {
	setupapi := windows.NewLazySystemDLL("setupapi.dll")
	setupDiGetClassDevs := setupapi.NewProc("SetupDiGetClassDevsW")
	setupDiEnumDeviceInfo := setupapi.NewProc("SetupDiEnumDeviceInfo")
	setupDiGetDeviceRegistryProperty := setupapi.NewProc("SetupDiGetDeviceRegistryPropertyW")
	setupDiDestroyDeviceInfoList := setupapi.NewProc("SetupDiDestroyDeviceInfoList")

	// GUID for the Ports device class
	guidPorts := windows.GUID{
		Data1: 0x4d36e978,
		Data2: 0xe325,
		Data3: 0x11ce,
		Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18},
	}

	const DIGCF_PRESENT = 0x00000002
	devInfo, _, _ := setupDiGetClassDevs.Call(
		uintptr(unsafe.Pointer(&guidPorts)),
		0,
		0,
		DIGCF_PRESENT,
	)
	if devInfo == uintptr(windows.InvalidHandle) {
		return nil, windows.GetLastError()
	}
	defer setupDiDestroyDeviceInfoList.Call(devInfo)

	type spDevinfoData struct {
		cbSize    uint32
		classGuid windows.GUID
		devInst   uint32
		reserved  uintptr
	}
	var devInfoData spDevinfoData
	devInfoData.cbSize = uint32(unsafe.Sizeof(devInfoData))

	var ports []DeviceInfo
	for i := uint32(0); ; i++ {
		ret, _, _ := setupDiEnumDeviceInfo.Call(
			devInfo,
			uintptr(i),
			uintptr(unsafe.Pointer(&devInfoData)),
		)
		if ret == 0 {
			break
		}

		const SPDRP_FRIENDLYNAME = 0x0000000C
		name, ok := deviceProperty(setupDiGetDeviceRegistryProperty, devInfo,
			unsafe.Pointer(&devInfoData), SPDRP_FRIENDLYNAME)
		if !ok {
			continue
		}

		// The friendly name carries the port, e.g. "USB Serial (COM7)"
		var comPort string
		if n := strings.LastIndex(name, "(COM"); n >= 0 {
			if m := strings.Index(name[n:], ")"); m >= 0 {
				comPort = name[n+1 : n+m]
			}
		}
		if comPort == "" {
			continue
		}

		port := DeviceInfo{
			Transport: "serial",
			Path:      comPort,
			Name:      name,
			Metadata:  make(map[string]string),
		}

		const SPDRP_HARDWAREID = 0x00000001
		if hwid, ok := deviceProperty(setupDiGetDeviceRegistryProperty, devInfo,
			unsafe.Pointer(&devInfoData), SPDRP_HARDWAREID); ok {
			port.VIDPID = parseWindowsHardwareID(hwid)
		}

		const SPDRP_MFG = 0x0000000B
		if mfg, ok := deviceProperty(setupDiGetDeviceRegistryProperty, devInfo,
			unsafe.Pointer(&devInfoData), SPDRP_MFG); ok {
			port.Metadata["manufacturer"] = mfg
		}

		if n := strings.Index(name, " ("); n > 0 {
			port.Metadata["product"] = name[:n]
		}

		ports = append(ports, port)
	}
	return ports, nil
}

// deviceProperty reads a string device property using the two-call
// size-then-data pattern
func deviceProperty(proc *windows.LazyProc, devInfo uintptr, devInfoData unsafe.Pointer, property uintptr) (string, bool) {
	var propertyType uint32
	var requiredSize uint32

	proc.Call(
		devInfo,
		uintptr(devInfoData),
		property,
		0,
		0,
		0,
		uintptr(unsafe.Pointer(&requiredSize)),
	)
	if requiredSize == 0 {
		return "", false
	}

	buf := make([]uint16, requiredSize/2)
	ret, _, _ := proc.Call(
		devInfo,
		uintptr(devInfoData),
		property,
		uintptr(unsafe.Pointer(&propertyType)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(requiredSize),
		0,
	)
	if ret == 0 {
		return "", false
	}
	return windows.UTF16ToString(buf), true
}

// parseWindowsHardwareID extracts VID:PID from a hardware ID of the
// form USB\VID_xxxx&PID_xxxx
func parseWindowsHardwareID(hwid string) string {
	hwid = strings.ToUpper(hwid)

	vidIdx := strings.Index(hwid, "VID_")
	if vidIdx < 0 {
		return ""
	}
	pidIdx := strings.Index(hwid, "PID_")
	if pidIdx < 0 {
		return ""
	}
	if vidIdx+8 > len(hwid) || pidIdx+8 > len(hwid) {
		return ""
	}

	vid := hwid[vidIdx+4 : vidIdx+8]
	pid := hwid[pidIdx+4 : pidIdx+8]
	if !isHex(vid) || !isHex(pid) {
		return ""
	}
	return vid + ":" + pid
}
