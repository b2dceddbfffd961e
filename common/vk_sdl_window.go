package common

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"batch_renderer/logger"
)

const APPLICATION_NAME = "batch renderer"
const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

// DebugReportExtension is the instance extension the validation message hook needs.
const DebugReportExtension = "VK_EXT_debug_report"

// InstanceOptions controls validation for the API instance.
type InstanceOptions struct {
	Validation       bool
	ValidationLayers []string
}

// Window encapsulates the SDL window together with the Vulkan instance and surface created for it. Each part
// is created and destroyed by its own method so that callers can order and unwind them step by step.
type Window struct {
	sdlVersion string
	vkVersion  string

	Win       *sdl.Window
	Resized   bool
	Minimized bool

	Inst vk.Instance
	Surf vk.Surface

	// Layers and DebugReport reflect what the instance was actually created with.
	Layers      []string
	DebugReport bool

	log *zap.Logger
}

// noteResize records a resize. The swapchain keeps the extent it was created with, so only the first
// resize is reported.
func (w *Window) noteResize(width int32, height int32) bool {
	if w.Resized {
		return false
	}
	w.Resized = true
	w.log.Warn("Window resized, rendering keeps the initial swapchain extent",
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return true
}

// OpenWindow initializes SDL, opens a Vulkan capable window and loads the Vulkan entry points through SDL.
func OpenWindow(title string, width int32, height int32) (*Window, error) {
	w := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
		vkVersion:  fmt.Sprintf("v%d.%d.%d", VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
		log:        logger.Named("window"),
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("initialize SDL: %w", err)
	}
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create SDL window for use with Vulkan: %w", err)
	}
	w.Win = win

	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("initialize Vulkan API: %w", err)
	}
	w.log.Info("Opened window",
		zap.String("title", title),
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.String("sdl", w.sdlVersion),
		zap.String("vulkanSpec", w.vkVersion),
	)
	return w, nil
}

// Close destroys the SDL window and shuts SDL down.
func (w *Window) Close() {
	if w.Win != nil {
		if err := w.Win.Destroy(); err != nil {
			w.log.Warn("Failed to destroy SDL window", zap.Error(err))
		}
		w.Win = nil
	}
	sdl.Quit()
}

// Extent is the current drawable size of the window in pixels.
func (w *Window) Extent() vk.Extent2D {
	width, height := w.Win.VulkanGetDrawableSize()
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

// CreateInstance creates the Vulkan instance with every extension SDL needs. With validation requested the
// layers and the debug report extension are enabled when available; missing ones only disable validation.
func (w *Window) CreateInstance(opts InstanceOptions) error {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	supportedExt, err := ReadInstanceExtensionPropertyNames()
	if err != nil {
		return err
	}
	if missing := Missing(requiredExtensions, supportedExt); len(missing) > 0 {
		return fmt.Errorf("required instance extensions not supported: %v", missing)
	}

	w.Layers = nil
	w.DebugReport = false
	if opts.Validation {
		w.Layers = w.availableLayers(opts.ValidationLayers)
		if IsSubset([]string{DebugReportExtension}, supportedExt) {
			requiredExtensions = append(requiredExtensions, DebugReportExtension)
			w.DebugReport = true
		} else {
			w.log.Warn("Debug report extension not supported, validation messages are not forwarded")
		}
	}

	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(w.Layers)),
		PpEnabledLayerNames:     TerminatedStrs(w.Layers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		return fmt.Errorf("create Vulkan instance: %w", err)
	}
	w.Inst = ins
	w.log.Info("Created Vulkan instance",
		zap.Strings("extensions", requiredExtensions),
		zap.Strings("layers", w.Layers),
	)
	return nil
}

// availableLayers drops every requested layer the loader does not know.
func (w *Window) availableLayers(requested []string) []string {
	supported, err := ReadInstanceLayerPropertyNames()
	if err != nil {
		w.log.Warn("Failed to read instance layers, validation disabled", zap.Error(err))
		return nil
	}
	if missing := Missing(requested, supported); len(missing) > 0 {
		w.log.Warn("Validation layers not available", zap.Strings("missing", missing))
	}
	var layers []string
	for _, l := range requested {
		if IsSubset([]string{l}, supported) {
			layers = append(layers, l)
		}
	}
	return layers
}

func (w *Window) DestroyInstance() {
	if w.Inst != nil {
		vk.DestroyInstance(w.Inst, nil)
		w.Inst = nil
	}
}

// CreateSurface creates the window's Vulkan surface through SDL.
func (w *Window) CreateSurface() error {
	surf, err := SdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		return fmt.Errorf("create SDL window's Vulkan surface: %w", err)
	}
	w.Surf = surf
	return nil
}

func (w *Window) DestroySurface() {
	if w.Surf != nil {
		vk.DestroySurface(w.Inst, w.Surf, nil)
		w.Surf = nil
	}
}
