package renderer

import (
	"errors"
	"fmt"
	"image"

	"batch_renderer/common"
	"batch_renderer/config"
	"batch_renderer/logger"
	"batch_renderer/mesh"
	"batch_renderer/model"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"
)

// Scene is the CPU side data uploaded once while the context is built.
type Scene struct {
	Mesh  *mesh.Mesh
	Atlas *image.RGBA
	Block *model.UniformBlock // initial uniform contents, capacity must equal Scene.MaxObjects
}

// Deps are the collaborators Build calls into.
type Deps struct {
	LoadScene func() (*Scene, error)
}

// Context owns every GPU resource needed to draw the batched scene. It is created by Build and released
// by Destroy, both in a fixed stage order.
type Context struct {
	cfg    *config.Config
	log    *zap.Logger
	stages builder

	scene *Scene

	// OS/Window level
	win       *common.Window
	debugHook vk.DebugReportCallback
	device    *common.Device

	// Target level
	swapChain   *common.SwapChain
	depth       *common.Image
	depthFormat vk.Format

	// Data level
	uploadPool   vk.CommandPool
	uniform      *common.Buffer
	atlas        *common.Image
	sampler      vk.Sampler
	vertexBuffer *common.Buffer
	indexBuffer  *common.Buffer
	indexCount   uint32

	// Drawing infrastructure level
	descriptors    *DescriptorProvisioner
	pipelineLayout vk.PipelineLayout
	renderPass     vk.RenderPass
	pipeline       vk.Pipeline
	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	// Frame level
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
}

// Build creates the render context stage by stage. When a stage fails everything created before it is
// released again and the error names the failing stage.
func Build(cfg *config.Config, deps Deps) (*Context, error) {
	if deps.LoadScene == nil {
		return nil, errors.New("renderer: no scene loader")
	}
	c := &Context{cfg: cfg, log: logger.Named("renderer")}
	c.stages = builder{log: c.log}
	if err := c.stages.run(c.stageList(deps)); err != nil {
		return nil, err
	}
	c.log.Info("Render context ready",
		zap.Strings("stages", c.stages.names()),
		zap.Uint32("width", c.swapChain.Extend.Width),
		zap.Uint32("height", c.swapChain.Extend.Height),
		zap.Int("swapchainImages", len(c.swapChain.Images)),
		zap.Uint32("indices", c.indexCount),
	)
	return c, nil
}

func (c *Context) stageList(deps Deps) []stage {
	return []stage{
		{name: "window", fatal: true, create: c.createWindow, release: c.destroyWindow},
		{name: "scene mesh", fatal: true, create: func() error { return c.loadScene(deps) }},
		{name: "instance", fatal: true, create: c.createInstance, release: c.destroyInstance},
		{name: "debug hook", fatal: false, create: c.createDebugHook, release: c.destroyDebugHook},
		{name: "surface", fatal: true, create: c.createSurface, release: c.destroySurface},
		{name: "device", fatal: true, create: c.createDevice, release: c.destroyDevice},
		{name: "upload pool", fatal: true, create: c.createUploadPool, release: c.destroyUploadPool},
		{name: "swapchain", fatal: true, create: c.createSwapChain, release: c.destroySwapChain},
		{name: "depth", fatal: true, create: c.createDepthResources, release: c.destroyDepthResources},
		{name: "uniform buffer", fatal: true, create: c.createUniformBuffer, release: c.destroyUniformBuffer},
		{name: "atlas texture", fatal: true, create: c.createTexture, release: c.destroyTexture},
		{name: "layouts", fatal: true, create: c.createLayouts, release: c.destroyLayouts},
		{name: "descriptor set", fatal: true, create: c.createDescriptorSet, release: c.destroyDescriptorSet},
		{name: "sync", fatal: true, create: c.createSyncObjects, release: c.destroySyncObjects},
		{name: "render pass", fatal: true, create: c.createRenderPass, release: c.destroyRenderPass},
		{name: "framebuffers", fatal: true, create: c.createFrameBuffers, release: c.destroyFrameBuffers},
		{name: "vertex buffer", fatal: true, create: c.createVertexBuffer, release: c.destroyVertexBuffer},
		{name: "index buffer", fatal: true, create: c.createIndexBuffer, release: c.destroyIndexBuffer},
		{name: "pipeline", fatal: true, create: c.createGraphicsPipeline, release: c.destroyGraphicsPipeline},
		{name: "commands", fatal: true, create: c.createCommandBuffers, release: c.destroyCommandBuffers},
	}
}

// Destroy waits for the device to finish all submitted work and releases every stage in reverse order.
// Calling it twice is a no-op.
func (c *Context) Destroy() {
	if c.device != nil {
		if err := c.device.WaitIdle(); err != nil {
			c.log.Warn("Device did not idle before teardown", zap.Error(err))
		}
	}
	c.stages.unwind()
	c.log.Info("Render context released")
}

// Window is the SDL window the context presents to.
func (c *Context) Window() *common.Window {
	return c.win
}

// Aspect is width / height of the swapchain extent.
func (c *Context) Aspect() float32 {
	return c.swapChain.Aspect
}

// SwapchainImages is the number of images the presenter cycles through.
func (c *Context) SwapchainImages() int {
	return len(c.swapChain.Images)
}

// Stage wrappers. Each create sets exactly the fields its release clears.

func (c *Context) createWindow() error {
	w, err := common.OpenWindow(c.cfg.Window.Title, int32(c.cfg.Window.Width), int32(c.cfg.Window.Height))
	if err != nil {
		return err
	}
	c.win = w
	return nil
}

func (c *Context) destroyWindow() {
	c.win.Close()
	c.win = nil
}

func (c *Context) loadScene(deps Deps) error {
	scene, err := deps.LoadScene()
	if err != nil {
		return err
	}
	if scene.Mesh == nil || len(scene.Mesh.Indices) == 0 {
		return fmt.Errorf("%w: scene has no indices", mesh.ErrMalformedMesh)
	}
	if scene.Atlas == nil {
		return errors.New("scene has no atlas image")
	}
	if scene.Block == nil || scene.Block.Capacity() != c.cfg.Scene.MaxObjects {
		return fmt.Errorf("%w: uniform block does not match max objects %d", model.ErrCapacity, c.cfg.Scene.MaxObjects)
	}
	c.scene = scene
	c.indexCount = uint32(len(scene.Mesh.Indices))
	c.log.Info("Scene loaded",
		zap.Int("vertices", len(scene.Mesh.Vertices)),
		zap.Int("indices", len(scene.Mesh.Indices)),
		zap.Int("atlas", scene.Atlas.Rect.Dx()),
	)
	return nil
}

func (c *Context) createInstance() error {
	return c.win.CreateInstance(common.InstanceOptions{
		Validation:       c.cfg.Vulkan.Validation,
		ValidationLayers: c.cfg.Vulkan.ValidationLayers,
	})
}

func (c *Context) destroyInstance() {
	c.win.DestroyInstance()
}

func (c *Context) createDebugHook() error {
	if !c.cfg.Vulkan.Validation {
		return nil
	}
	if !c.win.DebugReport {
		return fmt.Errorf("instance was created without %s", common.DebugReportExtension)
	}
	cb, err := common.CreateDebugHook(c.win.Inst)
	if err != nil {
		return err
	}
	c.debugHook = cb
	return nil
}

func (c *Context) destroyDebugHook() {
	if c.debugHook != nil {
		common.DestroyDebugHook(c.win.Inst, c.debugHook)
		c.debugHook = nil
	}
}

func (c *Context) createSurface() error {
	return c.win.CreateSurface()
}

func (c *Context) destroySurface() {
	c.win.DestroySurface()
}

func (c *Context) createDevice() error {
	dc, err := common.NewDevice(c.win.Inst, c.win.Surf, common.DeviceOptions{
		Extensions:       c.cfg.Vulkan.DeviceExtensions,
		ValidationLayers: c.win.Layers,
	})
	if err != nil {
		return err
	}
	c.device = dc
	return nil
}

func (c *Context) destroyDevice() {
	c.device.Destroy()
	c.device = nil
}

func (c *Context) createUploadPool() error {
	pool, err := common.VKSCreateCommandPool(
		c.device.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
		*c.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		return err
	}
	c.uploadPool = pool
	return nil
}

func (c *Context) destroyUploadPool() {
	vk.DestroyCommandPool(c.device.D, c.uploadPool, nil)
	c.uploadPool = nil
}

func (c *Context) createSwapChain() error {
	sc, err := common.NewSwapChain(c.device, c.win.Surf, c.win.Extent())
	if err != nil {
		return err
	}
	c.swapChain = sc
	return nil
}

func (c *Context) destroySwapChain() {
	c.swapChain.Destroy(c.device)
	c.swapChain = nil
}
