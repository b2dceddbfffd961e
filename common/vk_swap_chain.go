package common

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"

	"batch_renderer/logger"
)

type SwapChain struct {
	supDetails SwapChainDetails
	Handle     vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extend      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView
	Aspect   float32

	FrameBuffers []vk.Framebuffer

	log *zap.Logger
}

// NewSwapChain creates the swap chain for surf together with one image view per swap chain image. fallback is
// used as extent when the surface leaves the choice to the application.
func NewSwapChain(dc *Device, surf vk.Surface, fallback vk.Extent2D) (*SwapChain, error) {
	sc := &SwapChain{log: logger.Named("swapchain")}
	sc.chooseConfiguration(dc, surf, fallback)
	if err := sc.createSwapChainHandle(dc, surf); err != nil {
		return nil, err
	}
	if err := sc.readImages(dc); err != nil {
		sc.Destroy(dc)
		return nil, err
	}
	if err := sc.createImageViews(dc); err != nil {
		sc.Destroy(dc)
		return nil, err
	}

	// Precalculate the images' aspect ratio for later
	sc.Aspect = float32(sc.Extend.Width) / float32(sc.Extend.Height)
	return sc, nil
}

// CreateFrameBuffers creates one frame buffer per image view, each with the shared depth view attached.
func (sc *SwapChain) CreateFrameBuffers(dc *Device, renderPass vk.RenderPass, depthImageView vk.ImageView) error {
	sc.FrameBuffers = make([]vk.Framebuffer, 0, len(sc.ImgViews))
	for i := range sc.ImgViews {
		attachments := []vk.ImageView{sc.ImgViews[i], depthImageView}
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.Extend.Width,
			Height:          sc.Extend.Height,
			Layers:          1,
		}
		fb, err := VkCreateFrameBuffer(dc.D, &framebufferInfo, nil)
		if err != nil {
			sc.DestroyFrameBuffers(dc)
			return fmt.Errorf("create frame buffer [%d]: %w", i, err)
		}
		sc.FrameBuffers = append(sc.FrameBuffers, fb)
	}
	sc.log.Debug("Created frame buffers", zap.Int("count", len(sc.FrameBuffers)))
	return nil
}

func (sc *SwapChain) DestroyFrameBuffers(dc *Device) {
	for i := range sc.FrameBuffers {
		vk.DestroyFramebuffer(dc.D, sc.FrameBuffers[i], nil)
	}
	sc.FrameBuffers = nil
}

func (sc *SwapChain) chooseConfiguration(dc *Device, surf vk.Surface, fallback vk.Extent2D) {
	sc.supDetails = ReadSwapChainSupportDetails(dc.PD, surf)
	sc.Format = sc.supDetails.SelectSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	sc.PresentMode = sc.supDetails.SelectPresentMode(vk.PresentModeMailbox)
	sc.Extend = sc.supDetails.SelectExtent(fallback)
}

func (sc *SwapChain) createSwapChainHandle(dc *Device, surf vk.Surface) error {
	imgCount := sc.supDetails.ImageCount()

	// Graphics and present on different families need concurrent sharing of the images
	indices := dc.QFamilies
	sharingMode := vk.SharingModeExclusive
	var indexCount uint32
	var qFamIndices []uint32
	if !indices.SharedGraphicsPresent() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = []uint32{*indices.GraphicsFamily, *indices.PresentFamily}
		indexCount = 2
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               surf,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extend,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: indexCount,
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          sc.supDetails.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          nil,
	}

	var err error
	sc.Handle, err = VkCreateSwapChain(dc.D, createInfo, nil)
	if err != nil {
		return fmt.Errorf("create swap chain: %w", err)
	}
	sc.log.Info("Created swap chain",
		zap.Uint32("width", sc.Extend.Width),
		zap.Uint32("height", sc.Extend.Height),
		zap.Uint32("minImages", imgCount),
		zap.Int32("presentMode", int32(sc.PresentMode)),
	)
	return nil
}

func (sc *SwapChain) readImages(dc *Device) error {
	var err error
	sc.Images, err = ReadSwapChainImages(dc.D, sc.Handle)
	return err
}

func (sc *SwapChain) createImageViews(dc *Device) error {
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := VKSCreate2DImageView(dc.D, sc.Images[i], sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return fmt.Errorf("create swap chain image view [%d]: %w", i, err)
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	return nil
}

// Destroy releases the image views and the swap chain. Frame buffers are released by DestroyFrameBuffers.
func (sc *SwapChain) Destroy(dc *Device) {
	for i := range sc.ImgViews {
		vk.DestroyImageView(dc.D, sc.ImgViews[i], nil)
	}
	sc.ImgViews = nil
	if sc.Handle != nil {
		vk.DestroySwapchain(dc.D, sc.Handle, nil)
		sc.Handle = nil
	}
}

type SwapChainDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func (s *SwapChainDetails) IsAdequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// SelectSurfaceFormat returns the desired format and colour space when offered, else the first format.
func (s *SwapChainDetails) SelectSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) vk.SurfaceFormat {
	for _, af := range s.Formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af
		}
	}
	return s.Formats[0]
}

// SelectPresentMode returns desiredMode when offered, else FIFO which every implementation supports.
func (s *SwapChainDetails) SelectPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.PresentModes {
		if pm == desiredMode {
			return pm
		}
	}
	return vk.PresentModeFifo
}

// SelectExtent returns the surface's current extent. Surfaces reporting the special value 0xFFFFFFFF let the
// application choose, then fallback clamped to the supported range is used.
func (s *SwapChainDetails) SelectExtent(fallback vk.Extent2D) vk.Extent2D {
	c := s.Capabilities
	if c.CurrentExtent.Width != math.MaxUint32 {
		return c.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(fallback.Width, c.MinImageExtent.Width, c.MaxImageExtent.Width),
		Height: clamp(fallback.Height, c.MinImageExtent.Height, c.MaxImageExtent.Height),
	}
}

// ImageCount asks for one image more than the minimum, bounded by the maximum. A maximum of 0 means unbounded.
func (s *SwapChainDetails) ImageCount() uint32 {
	imgCount := s.Capabilities.MinImageCount + 1
	if maxCount := s.Capabilities.MaxImageCount; maxCount > 0 && imgCount > maxCount {
		imgCount = maxCount
	}
	return imgCount
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
