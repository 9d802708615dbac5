package wgpu_backend

// DeviceOption is a functional option used to configure the WebGPU device during construction.
type DeviceOption func(*device)

// WithLabel sets the debug label of the requested device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - DeviceOption: a function that sets the label
func WithLabel(label string) DeviceOption {
	return func(d *device) {
		d.label = label
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - DeviceOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) DeviceOption {
	return func(d *device) {
		d.forceFallbackAdapter = force
	}
}

// WithMaxBindGroups raises the number of descriptor sets the device accepts per pipeline.
// The WebGPU default is 4; programs with many parameter blocks need more.
//
// Parameters:
//   - n: the bind group limit to request
//
// Returns:
//   - DeviceOption: a function that sets the limit
func WithMaxBindGroups(n uint32) DeviceOption {
	return func(d *device) {
		d.maxBindGroups = max(n, 4)
	}
}
