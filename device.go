// Package cusp device model: a CUDA-like device table executed on CPU.
// Every matrix buffer lives in the memory pool of exactly one device, and
// a process-wide current-device selector governs where new buffers are
// allocated. Reading metadata back from a device is modelled as a
// synchronization barrier so that callers (and tests) can reason about
// how often the barrier is crossed.
package cusp

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. Each device owns a memory pool;
// buffers allocated on one device are not visible to another until they
// are copied with ChangeDeviceTo.
type Device struct {
	ID       int    // Unique device identifier
	Name     string // Human-readable device name
	TotalMem uint64 // Total available memory in bytes
	NumCores int    // Number of CPU cores backing the device

	memory    *MemoryPool
	syncCount int64
}

// Global runtime state
var (
	deviceMu      sync.Mutex
	devices       = map[int]*Device{}
	currentDevice int32
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		devices[0] = newDevice(0)
	})
}

func newDevice(id int) *Device {
	return &Device{
		ID:       id,
		Name:     "CPU",
		TotalMem: getSystemMemory(),
		NumCores: runtime.NumCPU(),
		memory:   NewMemoryPool(),
	}
}

// GetDevice returns the device with the given ID, creating it on first
// use. Devices are logical: they all execute on the host CPU but hold
// disjoint memory pools.
func GetDevice(id int) (*Device, error) {
	if id < 0 {
		return nil, ErrInvalidDevice
	}
	deviceMu.Lock()
	defer deviceMu.Unlock()
	d, ok := devices[id]
	if !ok {
		d = newDevice(id)
		devices[id] = d
	}
	return d, nil
}

// CurrentDevice returns the ID of the device that new allocations target.
func CurrentDevice() int {
	return int(atomic.LoadInt32(&currentDevice))
}

// SetDevice selects the device that subsequent allocations target.
func SetDevice(id int) error {
	if id < 0 {
		return ErrInvalidDevice
	}
	if _, err := GetDevice(id); err != nil {
		return err
	}
	atomic.StoreInt32(&currentDevice, int32(id))
	return nil
}

// GetDeviceCount returns the number of devices in the device table.
func GetDeviceCount() int {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	return len(devices)
}

// Synchronize waits for outstanding device work and marks a host-device
// barrier crossing. Operations that read device metadata back to the host
// (fetching the non-zero count, cache verification) call this implicitly.
func (d *Device) Synchronize() {
	atomic.AddInt64(&d.syncCount, 1)
}

// SyncCount reports how many synchronization barriers this device has
// crossed. The non-zero count cache exists to keep this number low; tests
// use it to prove that cached queries do not touch the device.
func (d *Device) SyncCount() int64 {
	return atomic.LoadInt64(&d.syncCount)
}

// Malloc allocates memory from this device's pool.
func (d *Device) Malloc(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}
	if uint64(size) > d.TotalMem {
		return DevicePtr{}, ErrOutOfMemory
	}
	return d.memory.Allocate(size)
}

// Free returns memory to this device's pool. Freeing a zero DevicePtr is
// a no-op.
func (d *Device) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}
	return d.memory.Free(ptr)
}

// Malloc allocates memory on the current device.
func Malloc(size int) (DevicePtr, error) {
	d, err := GetDevice(CurrentDevice())
	if err != nil {
		return DevicePtr{}, err
	}
	return d.Malloc(size)
}

// Free releases memory allocated on the current device.
func Free(ptr DevicePtr) error {
	d, err := GetDevice(CurrentDevice())
	if err != nil {
		return err
	}
	return d.Free(ptr)
}

// mallocOn allocates from the pool of a specific device.
func mallocOn(deviceID, size int) (DevicePtr, error) {
	d, err := GetDevice(deviceID)
	if err != nil {
		return DevicePtr{}, err
	}
	return d.Malloc(size)
}

// freeOn releases into the pool of a specific device.
func freeOn(deviceID int, ptr DevicePtr) error {
	d, err := GetDevice(deviceID)
	if err != nil {
		return err
	}
	return d.Free(ptr)
}
