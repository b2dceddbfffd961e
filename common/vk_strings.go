package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// String helpers turning the spec defined property structs into readable log lines.

// DescribePhysicalDevice renders a device, its features and all of its queue families as a small tree.
func DescribePhysicalDevice(
	pdProps vk.PhysicalDeviceProperties,
	pdFeatures vk.PhysicalDeviceFeatures,
	qFamilies []vk.QueueFamilyProperties,
) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		prefix := "| "
		if i == len(qFamilies)-1 {
			prefix = "|_"
		}
		strBuilder.WriteString(fmt.Sprintf("%sQfamily[%d] %s\n", prefix, i, describeQueueFamily(qFamilies[i])))
	}
	return fmt.Sprintf(
		"%s:\n|_%s\n|_anisotropy: %t, geometryShader: %t\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		describeDeviceProps(pdProps),
		pdFeatures.SamplerAnisotropy == vk.True,
		pdFeatures.GeometryShader == vk.True,
		strBuilder.String(),
	)
}

// DeviceName is the driver reported name of a physical device.
func DeviceName(pdProps vk.PhysicalDeviceProperties) string {
	return vk.ToString(pdProps.DeviceName[:])
}

func VendorName(v vk.VendorId) string {
	// Known PCI vendor ids of Vulkan implementations.
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

// DriverVersion decodes the raw driver version. NVIDIA packs it differently than the Vulkan version macros.
func DriverVersion(vendor vk.VendorId, raw uint32) string {
	if vendor == 0x10DE {
		return nvidiaVer(raw)
	}
	return vk.Version(raw).String()
}

func nvidiaVer(i uint32) string {
	return fmt.Sprintf(
		"%d.%d.%d.%d",
		(i>>22)&0x3ff,
		(i>>14)&0x0ff,
		(i>>6)&0x0ff,
		i&0x003f,
	)
}

func describeDeviceProps(pdProps vk.PhysicalDeviceProperties) string {
	return fmt.Sprintf("api: %s, driver: %s, vendorId: %d (%s), deviceId: %d, deviceType: %s, UUID: %v",
		vk.Version(pdProps.ApiVersion).String(),
		DriverVersion(vk.VendorId(pdProps.VendorID), pdProps.DriverVersion),
		vk.VendorId(pdProps.VendorID),
		VendorName(vk.VendorId(pdProps.VendorID)),
		pdProps.DeviceID,
		DeviceTypeName(pdProps.DeviceType),
		hex.EncodeToString(pdProps.PipelineCacheUUID[:]),
	)
}

func DeviceTypeName(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func describeQueueFamily(q vk.QueueFamilyProperties) string {
	return fmt.Sprintf(
		"count: %2d, valid ts bits: %d, imageGranularity: (%d,%d,%d), flags: %v",
		q.QueueCount,
		q.TimestampValidBits,
		q.MinImageTransferGranularity.Width,
		q.MinImageTransferGranularity.Height,
		q.MinImageTransferGranularity.Depth,
		QueueFlagNames(q.QueueFlags),
	)
}

// QueueFlagNames lists the set capability bits of a queue family by their Vulkan names.
func QueueFlagNames(bits vk.QueueFlags) []string {
	var properties []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		properties = append(properties, "VK_QUEUE_GRAPHICS_BIT")
	}
	if flags&vk.QueueComputeBit > 0 {
		properties = append(properties, "VK_QUEUE_COMPUTE_BIT")
	}
	if flags&vk.QueueTransferBit > 0 {
		properties = append(properties, "VK_QUEUE_TRANSFER_BIT")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		properties = append(properties, "VK_QUEUE_SPARSE_BINDING_BIT")
	}
	if flags&vk.QueueProtectedBit > 0 {
		properties = append(properties, "VK_QUEUE_PROTECTED_BIT")
	}
	return properties
}
