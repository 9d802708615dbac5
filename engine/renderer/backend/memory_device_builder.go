package backend

// defaultMaxBufferSize matches the WebGPU default maxBufferSize limit (256 MiB).
const defaultMaxBufferSize = 256 << 20

// MemoryDeviceOption is a functional option used to configure a MemoryDevice during construction.
type MemoryDeviceOption func(*memoryDevice)

// WithMaxBufferSize sets the largest buffer the device will create.
//
// Parameters:
//   - size: the limit in bytes
//
// Returns:
//   - MemoryDeviceOption: a function that sets the buffer size limit
func WithMaxBufferSize(size uint64) MemoryDeviceOption {
	return func(d *memoryDevice) {
		d.maxBufferSize = size
	}
}
