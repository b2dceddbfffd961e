package common

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"batch_renderer/logger"
)

// ErrMissingQueueFamily is returned when a device has no graphics or no present capable queue family.
var ErrMissingQueueFamily = errors.New("missing required queue family")

// QueueFamilyIndices records the first queue family found for each role. A family may serve several roles.
// Only graphics and present are required, compute and transfer are informational.
type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	ComputeFamily  *uint32
	TransferFamily *uint32
	PresentFamily  *uint32
}

// FindQueueFamilies scans the queue families of pd once.
func FindQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (QueueFamilyIndices, error) {
	return pickQueueFamilies(ReadQueueFamilies(pd), func(i uint32) bool {
		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, i, surf, &presentSupport)
		return presentSupport > 0
	})
}

func pickQueueFamilies(qFamilies []vk.QueueFamilyProperties, canPresent func(uint32) bool) (QueueFamilyIndices, error) {
	var indices QueueFamilyIndices
	for i := range qFamilies {
		idx := uint32(i)
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = &idx
		}
		if indices.ComputeFamily == nil && isBitSet(qFamilies[i], vk.QueueComputeBit) {
			indices.ComputeFamily = &idx
		}
		if indices.TransferFamily == nil && isBitSet(qFamilies[i], vk.QueueTransferBit) {
			indices.TransferFamily = &idx
		}
		if indices.PresentFamily == nil && canPresent(idx) {
			indices.PresentFamily = &idx
		}
		if indices.isComplete() {
			break
		}
	}

	if indices.ComputeFamily == nil {
		logger.Warn("No compute capable queue family found", zap.Int("families", len(qFamilies)))
	}
	if indices.TransferFamily == nil {
		logger.Warn("No transfer capable queue family found", zap.Int("families", len(qFamilies)))
	}
	if indices.GraphicsFamily == nil {
		return indices, fmt.Errorf("%w: no graphics capable queue family", ErrMissingQueueFamily)
	}
	if indices.PresentFamily == nil {
		return indices, fmt.Errorf("%w: no present capable queue family for the surface", ErrMissingQueueFamily)
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isComplete() bool {
	return q.GraphicsFamily != nil && q.ComputeFamily != nil && q.TransferFamily != nil && q.PresentFamily != nil
}

// IsRequiredFound reports whether graphics and present families are known.
func (q *QueueFamilyIndices) IsRequiredFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// SharedGraphicsPresent reports whether one family handles both graphics and presentation.
func (q *QueueFamilyIndices) SharedGraphicsPresent() bool {
	return q.IsRequiredFound() && *q.GraphicsFamily == *q.PresentFamily
}

// uniqueRequired lists the distinct families a logical device needs queues from.
func (q *QueueFamilyIndices) uniqueRequired() ([]uint32, error) {
	if !q.IsRequiredFound() {
		return nil, ErrMissingQueueFamily
	}
	uniqIndices := []uint32{*q.GraphicsFamily}
	if *q.PresentFamily != *q.GraphicsFamily {
		uniqIndices = append(uniqIndices, *q.PresentFamily)
	}
	return uniqIndices, nil
}

func (q *QueueFamilyIndices) toQueueCreateInfos() ([]vk.DeviceQueueCreateInfo, error) {
	uniqIndices, err := q.uniqueRequired()
	if err != nil {
		return nil, err
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos, nil
}
