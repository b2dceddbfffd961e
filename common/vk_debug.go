package common

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"batch_renderer/logger"
)

// CreateDebugHook registers a debug report callback forwarding validation messages to the "vulkan" logger.
// The instance needs the debug report extension enabled.
func CreateDebugHook(inst vk.Instance) (vk.DebugReportCallback, error) {
	vkLog := logger.Named("vulkan")
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportErrorBit |
				vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			if ce := vkLog.Check(debugLevel(flags), message); ce != nil {
				ce.Write(
					zap.String("layer", layerPrefix),
					zap.Int32("code", messageCode),
					zap.Int32("objectType", int32(objectType)),
				)
			}
			return vk.False
		},
	}
	return VkCreateDebugReportCallback(inst, &createInfo, nil)
}

func DestroyDebugHook(inst vk.Instance, cb vk.DebugReportCallback) {
	if cb != nil {
		vk.DestroyDebugReportCallback(inst, cb, nil)
	}
}

// debugLevel maps report flags to the log level of the most severe bit set.
func debugLevel(flags vk.DebugReportFlags) zapcore.Level {
	f := vk.DebugReportFlagBits(flags)
	switch {
	case f&vk.DebugReportErrorBit != 0:
		return zapcore.ErrorLevel
	case f&(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return zapcore.WarnLevel
	case f&vk.DebugReportInformationBit != 0:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
