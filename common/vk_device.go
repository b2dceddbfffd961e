package common

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"batch_renderer/logger"
)

// ErrNoSuitableDevice is returned when no physical device offers the queues, extensions and swap chain
// support the renderer needs.
var ErrNoSuitableDevice = errors.New("no suitable physical device (GPU) found")

// DeviceOptions selects what the logical device is created with.
type DeviceOptions struct {
	Extensions       []string
	ValidationLayers []string // empty disables device level layers
}

// Device represents the interfacing objects between the surface, the hardware running Vulkan and the rest of
// the renderer. It owns the logical device; the instance and surface it was created from are borrowed.
type Device struct {
	PD            vk.PhysicalDevice
	PdProps       vk.PhysicalDeviceProperties
	PdMemoryProps vk.PhysicalDeviceMemoryProperties
	QFamilies     QueueFamilyIndices
	Anisotropy    bool

	D         vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue

	log *zap.Logger
}

// NewDevice picks a physical device able to draw to surf and creates the logical device with one graphics
// and one present queue.
func NewDevice(inst vk.Instance, surf vk.Surface, opts DeviceOptions) (*Device, error) {
	dc := &Device{log: logger.Named("device")}
	if err := dc.selectPhysicalDevice(inst, surf, opts.Extensions); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(opts); err != nil {
		return nil, err
	}
	return dc, nil
}

// Destroy all objects created by itself. It does not destroy the instance or surface provided for instantiation.
func (dc *Device) Destroy() {
	if dc.D != nil {
		vk.DestroyDevice(dc.D, nil)
		dc.D = nil
	}
}

// WaitIdle blocks until the device finished all submitted work.
func (dc *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(dc.D))
}

type deviceCandidate struct {
	pd       vk.PhysicalDevice
	props    vk.PhysicalDeviceProperties
	families QueueFamilyIndices
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface, extensions []string) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	var candidates []deviceCandidate
	for _, pd := range availableDevices {
		c, ok := dc.checkDevice(pd, su, extensions)
		if ok {
			candidates = append(candidates, c)
		}
	}
	types := make([]vk.PhysicalDeviceType, len(candidates))
	for i := range candidates {
		types[i] = candidates[i].props.DeviceType
	}
	pick := preferDiscrete(types)
	if pick < 0 {
		return fmt.Errorf("%w: checked %d devices", ErrNoSuitableDevice, len(availableDevices))
	}

	chosen := candidates[pick]
	dc.PD = chosen.pd
	dc.PdProps = chosen.props
	dc.QFamilies = chosen.families
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PD)
	dc.Anisotropy = ReadPhysicalDeviceFeatures(dc.PD).SamplerAnisotropy == vk.True
	dc.log.Info("Selected physical device",
		zap.String("name", DeviceName(dc.PdProps)),
		zap.String("type", DeviceTypeName(dc.PdProps.DeviceType)),
		zap.Uint32("graphicsFamily", *dc.QFamilies.GraphicsFamily),
		zap.Uint32("presentFamily", *dc.QFamilies.PresentFamily),
	)
	return nil
}

// checkDevice reports whether pd has graphics and present queues, all required extensions and a usable
// swap chain for su.
func (dc *Device) checkDevice(pd vk.PhysicalDevice, su vk.Surface, extensions []string) (deviceCandidate, bool) {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	dc.log.Debug("Physical device\n" + DescribePhysicalDevice(pdProps, pdFeatures, ReadQueueFamilies(pd)))
	name := zap.String("device", DeviceName(pdProps))

	indices, err := FindQueueFamilies(pd, su)
	if err != nil {
		dc.log.Info("Skipping device", name, zap.Error(err))
		return deviceCandidate{}, false
	}
	supported, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		dc.log.Info("Skipping device", name, zap.Error(err))
		return deviceCandidate{}, false
	}
	if missing := Missing(extensions, supported); len(missing) > 0 {
		dc.log.Info("Skipping device, missing extensions", name, zap.Strings("missing", missing))
		return deviceCandidate{}, false
	}
	if !ReadSwapChainSupportDetails(pd, su).IsAdequate() {
		dc.log.Info("Skipping device, no usable swap chain", name)
		return deviceCandidate{}, false
	}
	return deviceCandidate{pd: pd, props: pdProps, families: indices}, true
}

// preferDiscrete returns the index of the first discrete GPU, else the first entry, or -1 for no entries.
func preferDiscrete(types []vk.PhysicalDeviceType) int {
	for i, t := range types {
		if t == vk.PhysicalDeviceTypeDiscreteGpu {
			return i
		}
	}
	if len(types) > 0 {
		return 0
	}
	return -1
}

func (dc *Device) createLogicalDevice(opts DeviceOptions) error {
	queueInfos, err := dc.QFamilies.toQueueCreateInfos()
	if err != nil {
		return err
	}
	deviceFeatures := vk.PhysicalDeviceFeatures{}
	if dc.Anisotropy {
		deviceFeatures.SamplerAnisotropy = vk.True
	}
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(opts.Extensions)),
		PpEnabledExtensionNames: TerminatedStrs(opts.Extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
	}
	if len(opts.ValidationLayers) > 0 {
		deviceCreateInfo.EnabledLayerCount = uint32(len(opts.ValidationLayers))
		deviceCreateInfo.PpEnabledLayerNames = TerminatedStrs(opts.ValidationLayers)
	}

	dc.D, err = VkCreateDevice(dc.PD, deviceCreateInfo, nil)
	if err != nil {
		return fmt.Errorf("create logical device: %w", err)
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		dc.Destroy()
		return fmt.Errorf("get graphics device queue: %w", err)
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		dc.Destroy()
		return fmt.Errorf("get present device queue: %w", err)
	}
	dc.log.Debug("Created logical device", zap.Int("queueFamilies", len(queueInfos)),
		zap.Strings("extensions", opts.Extensions))
	return nil
}
