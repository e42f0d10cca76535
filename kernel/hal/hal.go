// Package hal detects the display hardware and exposes the system console.
package hal

import (
	"bytes"
	"vertexos/device"
	"vertexos/device/tty"
	"vertexos/device/video/console"
	"vertexos/kernel"
	"vertexos/kernel/kfmt"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole console.Device
	activeTTY     tty.Device

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	strBuf  bytes.Buffer

	errNoConsole = &kernel.Error{Module: "hal", Message: "no console device detected"}
	errNoTTY     = &kernel.Error{Module: "hal", Message: "no terminal device detected"}
)

// DefaultProbes returns the probe functions for the hardware found on every
// PC compatible machine.
func DefaultProbes() []device.ProbeFn {
	return []device.ProbeFn{
		console.ProbeForVgaTextConsole,
		tty.ProbeForVT,
	}
}

// ActiveTTY returns the currently active TTY.
func ActiveTTY() tty.Device {
	return devices.activeTTY
}

// ActiveConsole returns the currently active console.
func ActiveConsole() console.Device {
	return devices.activeConsole
}

// DetectHardware executes the supplied probe functions in order and
// initializes the drivers they return. The first console and the first TTY
// that initialize successfully are linked together and the TTY becomes the
// kfmt output sink.
func DetectHardware(probes ...device.ProbeFn) *kernel.Error {
	probe(probes)

	switch {
	case devices.activeConsole == nil:
		return errNoConsole
	case devices.activeTTY == nil:
		return errNoTTY
	}

	return nil
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(probes []device.ProbeFn) {
	var w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	for _, probeFn := range probes {
		drv := probeFn()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case console.Device:
		if devices.activeConsole != nil {
			return
		}

		devices.activeConsole = drvImpl
		if devices.activeTTY != nil {
			linkTTYToConsole()
		}
	case tty.Device:
		if devices.activeTTY != nil {
			return
		}

		devices.activeTTY = drvImpl
		if devices.activeConsole != nil {
			linkTTYToConsole()
		}
	}
}

// linkTTYToConsole connects the active TTY device to the active console device
// and syncs their contents. Output buffered by kfmt before this point is
// replayed onto the terminal.
func linkTTYToConsole() {
	devices.activeTTY.AttachTo(devices.activeConsole)
	devices.activeTTY.SetState(tty.StateActive)
	kfmt.SetOutputSink(devices.activeTTY)
}
