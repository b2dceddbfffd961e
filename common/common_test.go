package common

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"batch_renderer/input"
)

func TestMissing(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"}
	assert.Empty(t, Missing([]string{"VK_KHR_surface"}, available))
	assert.Equal(t, []string{"VK_KHR_swapchain"}, Missing([]string{"VK_KHR_surface", "VK_KHR_swapchain"}, available))
	assert.True(t, IsSubset(nil, available))
	assert.False(t, IsSubset([]string{"x"}, nil))
}

func TestTerminatedStr(t *testing.T) {
	assert.Equal(t, "main\x00", TerminatedStr("main"))
	assert.Equal(t, "main\x00", TerminatedStr("main\x00"))
	assert.Equal(t, "\x00", TerminatedStr(""))
}

func TestTerminatedStrsKeepsInput(t *testing.T) {
	in := []string{"a", "b\x00"}
	out := TerminatedStrs(in)
	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
	assert.Equal(t, "a", in[0])
}

func TestAsUint32Arr(t *testing.T) {
	words := AsUint32Arr([]byte{1, 0, 0, 0, 2, 0, 0, 0, 9})
	assert.Equal(t, []uint32{1, 2}, words)
	assert.Nil(t, AsUint32Arr([]byte{1, 2}))
}

func family(bits vk.QueueFlagBits) vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(bits), QueueCount: 1}
}

func TestPickQueueFamiliesRoles(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueTransferBit),
		family(vk.QueueGraphicsBit | vk.QueueComputeBit),
		family(vk.QueueComputeBit),
	}
	indices, err := pickQueueFamilies(families, func(i uint32) bool { return i == 2 })
	require.NoError(t, err)
	assert.EqualValues(t, 1, *indices.GraphicsFamily)
	assert.EqualValues(t, 1, *indices.ComputeFamily)
	assert.EqualValues(t, 0, *indices.TransferFamily)
	assert.EqualValues(t, 2, *indices.PresentFamily)
	assert.False(t, indices.SharedGraphicsPresent())
}

func TestPickQueueFamiliesFirstMatchWins(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
		family(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
	}
	indices, err := pickQueueFamilies(families, func(uint32) bool { return true })
	require.NoError(t, err)
	assert.EqualValues(t, 0, *indices.GraphicsFamily)
	assert.EqualValues(t, 0, *indices.PresentFamily)
	assert.True(t, indices.SharedGraphicsPresent())
}

func TestPickQueueFamiliesMissingRequired(t *testing.T) {
	_, err := pickQueueFamilies([]vk.QueueFamilyProperties{family(vk.QueueComputeBit)}, func(uint32) bool { return true })
	assert.ErrorIs(t, err, ErrMissingQueueFamily)

	_, err = pickQueueFamilies([]vk.QueueFamilyProperties{family(vk.QueueGraphicsBit)}, func(uint32) bool { return false })
	assert.ErrorIs(t, err, ErrMissingQueueFamily)
}

func TestPickQueueFamiliesOptionalRolesMissing(t *testing.T) {
	indices, err := pickQueueFamilies([]vk.QueueFamilyProperties{family(vk.QueueGraphicsBit)}, func(uint32) bool { return true })
	require.NoError(t, err)
	assert.Nil(t, indices.ComputeFamily)
	assert.Nil(t, indices.TransferFamily)
	assert.True(t, indices.IsRequiredFound())
}

func TestQueueCreateInfos(t *testing.T) {
	zero, one := uint32(0), uint32(1)

	shared := QueueFamilyIndices{GraphicsFamily: &zero, PresentFamily: &zero}
	infos, err := shared.toQueueCreateInfos()
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	split := QueueFamilyIndices{GraphicsFamily: &zero, PresentFamily: &one}
	infos, err = split.toQueueCreateInfos()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.EqualValues(t, 1, infos[1].QueueFamilyIndex)

	_, err = (&QueueFamilyIndices{GraphicsFamily: &zero}).toQueueCreateInfos()
	assert.ErrorIs(t, err, ErrMissingQueueFamily)
}

func TestPreferDiscrete(t *testing.T) {
	assert.Equal(t, -1, preferDiscrete(nil))
	assert.Equal(t, 0, preferDiscrete([]vk.PhysicalDeviceType{vk.PhysicalDeviceTypeIntegratedGpu}))
	assert.Equal(t, 1, preferDiscrete([]vk.PhysicalDeviceType{
		vk.PhysicalDeviceTypeIntegratedGpu,
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeDiscreteGpu,
	}))
}

func TestSwapChainSelection(t *testing.T) {
	details := SwapChainDetails{
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}
	assert.True(t, details.IsAdequate())
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, details.SelectSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear).Format)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, details.SelectSurfaceFormat(vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear).Format)
	assert.Equal(t, vk.PresentModeMailbox, details.SelectPresentMode(vk.PresentModeMailbox))
	assert.Equal(t, vk.PresentModeFifo, details.SelectPresentMode(vk.PresentModeImmediate))

	assert.False(t, (&SwapChainDetails{}).IsAdequate())
}

func TestSwapChainImageCount(t *testing.T) {
	d := SwapChainDetails{}
	d.Capabilities.MinImageCount = 2
	assert.EqualValues(t, 3, d.ImageCount())
	d.Capabilities.MaxImageCount = 2
	assert.EqualValues(t, 2, d.ImageCount())
	d.Capabilities.MaxImageCount = 8
	assert.EqualValues(t, 3, d.ImageCount())
}

func TestSwapChainExtent(t *testing.T) {
	d := SwapChainDetails{}
	d.Capabilities.CurrentExtent = vk.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, d.SelectExtent(vk.Extent2D{Width: 1, Height: 1}))

	d.Capabilities.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	d.Capabilities.MinImageExtent = vk.Extent2D{Width: 100, Height: 100}
	d.Capabilities.MaxImageExtent = vk.Extent2D{Width: 1000, Height: 1000}
	assert.Equal(t, vk.Extent2D{Width: 1000, Height: 100}, d.SelectExtent(vk.Extent2D{Width: 4000, Height: 10}))
}

func TestFindMemoryType(t *testing.T) {
	var mp vk.PhysicalDeviceMemoryProperties
	mp.MemoryTypeCount = 3
	mp.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	mp.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	mp.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	idx, err := FindMemoryType(mp, 0b111, hostCoherent)
	require.NoError(t, err)
	assert.EqualValues(t, 2, idx)

	idx, err = FindMemoryType(mp, 0b111, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	require.NoError(t, err)
	assert.EqualValues(t, 0, idx)

	_, err = FindMemoryType(mp, 0b011, hostCoherent)
	assert.ErrorIs(t, err, ErrNoMemoryType)
}

func TestDebugLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, debugLevel(vk.DebugReportFlags(vk.DebugReportErrorBit|vk.DebugReportWarningBit)))
	assert.Equal(t, zapcore.WarnLevel, debugLevel(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit)))
	assert.Equal(t, zapcore.InfoLevel, debugLevel(vk.DebugReportFlags(vk.DebugReportInformationBit)))
	assert.Equal(t, zapcore.DebugLevel, debugLevel(vk.DebugReportFlags(vk.DebugReportDebugBit)))
}

func TestResizeWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := &Window{log: zap.New(core)}

	assert.True(t, w.noteResize(800, 600))
	assert.False(t, w.noteResize(1024, 768))
	assert.True(t, w.Resized)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int32(800), logs.All()[0].ContextMap()["width"])
}

func TestKeyAction(t *testing.T) {
	cases := map[sdl.Keycode]input.Action{
		sdl.K_w:      input.ActionForward,
		sdl.K_s:      input.ActionBackward,
		sdl.K_a:      input.ActionLeft,
		sdl.K_d:      input.ActionRight,
		sdl.K_q:      input.ActionUp,
		sdl.K_e:      input.ActionDown,
		sdl.K_f:      input.ActionRegenerateMaterials,
		sdl.K_SPACE:  input.ActionToggleLight,
		sdl.K_r:      input.ActionCycleReset,
		sdl.K_ESCAPE: input.ActionClose,
		sdl.K_z:      input.ActionNone,
	}
	for key, want := range cases {
		assert.Equal(t, want, KeyAction(key), "key %d", key)
	}
}

func TestDescriptions(t *testing.T) {
	assert.Equal(t, "NVIDIA", VendorName(0x10DE))
	assert.Equal(t, "unknown", VendorName(0x1234))
	assert.Equal(t, "1.2.3.4", nvidiaVer(1<<22|2<<14|3<<6|4))
	assert.Equal(t, "discrete gpu", DeviceTypeName(vk.PhysicalDeviceTypeDiscreteGpu))
	assert.Equal(t,
		[]string{"VK_QUEUE_GRAPHICS_BIT", "VK_QUEUE_TRANSFER_BIT"},
		QueueFlagNames(vk.QueueFlags(vk.QueueGraphicsBit|vk.QueueTransferBit)),
	)
}
