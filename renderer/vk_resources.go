package renderer

import (
	"fmt"

	"batch_renderer/common"
	"batch_renderer/model"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"
)

const atlasFormat = vk.FormatR8g8b8a8Srgb

func (c *Context) createDepthResources() error {
	dFormat, err := c.findDepthFormat()
	if err != nil {
		return fmt.Errorf("depth format: %w", err)
	}
	dImg, err := common.CreateImage(
		c.device,
		c.swapChain.Extend.Width,
		c.swapChain.Extend.Height,
		dFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return err
	}
	if err := dImg.CreateView(c.device, vk.ImageAspectFlags(vk.ImageAspectDepthBit)); err != nil {
		dImg.Destroy(c.device)
		return err
	}
	if err := c.transitionImageLayout(dImg, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		dImg.Destroy(c.device)
		return err
	}
	c.depth = dImg
	c.depthFormat = dFormat
	c.log.Debug("Created depth target", zap.Int32("format", int32(dFormat)))
	return nil
}

func (c *Context) destroyDepthResources() {
	c.depth.Destroy(c.device)
	c.depth = nil
}

// createUniformBuffer allocates the persistently mapped frame block and writes the initial camera, light
// and material state into it.
func (c *Context) createUniformBuffer() error {
	size := vk.DeviceSize(model.SizeOfUniformBlock(c.cfg.Scene.MaxObjects))
	if limit := vk.DeviceSize(c.device.PdProps.Limits.MaxUniformBufferRange); size > limit {
		return fmt.Errorf("%w: uniform block of %d bytes exceeds the device limit of %d", model.ErrCapacity, size, limit)
	}
	buf, err := common.CreateBuffer(
		c.device,
		size,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return err
	}
	if err := buf.Map(c.device); err != nil {
		buf.Destroy(c.device)
		return err
	}
	if err := buf.Write(c.scene.Block.Bytes()); err != nil {
		buf.Destroy(c.device)
		return err
	}
	c.uniform = buf
	return nil
}

func (c *Context) destroyUniformBuffer() {
	c.uniform.Destroy(c.device)
	c.uniform = nil
}

// createTexture uploads the atlas image and creates its view and sampler.
func (c *Context) createTexture() error {
	img := c.scene.Atlas
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w == 0 || h == 0 || len(img.Pix) < w*h*4 {
		return fmt.Errorf("atlas image of %dx%d has %d bytes", w, h, len(img.Pix))
	}
	stgBuf, err := c.staging(img.Pix[:w*h*4])
	if err != nil {
		return err
	}
	defer stgBuf.Destroy(c.device)

	tex, err := common.CreateImage(
		c.device,
		uint32(w),
		uint32(h),
		atlasFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return err
	}
	steps := []func() error{
		func() error {
			return c.transitionImageLayout(tex, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		},
		func() error { return c.copyBufferToImage(stgBuf, tex) },
		func() error {
			return c.transitionImageLayout(tex, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		},
		func() error { return tex.CreateView(c.device, vk.ImageAspectFlags(vk.ImageAspectColorBit)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			tex.Destroy(c.device)
			return err
		}
	}

	sampler, err := common.VkCreateSampler(c.device.D, c.samplerInfo(), nil)
	if err != nil {
		tex.Destroy(c.device)
		return fmt.Errorf("create texture sampler: %w", err)
	}
	c.atlas = tex
	c.sampler = sampler
	c.log.Debug("Uploaded atlas texture", zap.Int("width", w), zap.Int("height", h))
	return nil
}

func (c *Context) samplerInfo() *vk.SamplerCreateInfo {
	anisotropy := vk.Bool32(vk.False)
	maxAnisotropy := float32(1)
	if c.device.Anisotropy {
		anisotropy = vk.True
		maxAnisotropy = c.device.PdProps.Limits.MaxSamplerAnisotropy
	}
	return &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		MipLodBias:              0.0,
		AnisotropyEnable:        anisotropy,
		MaxAnisotropy:           maxAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  0.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
}

func (c *Context) destroyTexture() {
	vk.DestroySampler(c.device.D, c.sampler, nil)
	c.sampler = nil
	c.atlas.Destroy(c.device)
	c.atlas = nil
}

func (c *Context) createSyncObjects() error {
	imageAvailable, err := common.VKSCreateSemaphore(c.device.D)
	if err != nil {
		return fmt.Errorf("create image available semaphore: %w", err)
	}
	renderFinished, err := common.VKSCreateSemaphore(c.device.D)
	if err != nil {
		vk.DestroySemaphore(c.device.D, imageAvailable, nil)
		return fmt.Errorf("create render finished semaphore: %w", err)
	}
	c.imageAvailable = imageAvailable
	c.renderFinished = renderFinished
	return nil
}

func (c *Context) destroySyncObjects() {
	vk.DestroySemaphore(c.device.D, c.renderFinished, nil)
	vk.DestroySemaphore(c.device.D, c.imageAvailable, nil)
	c.renderFinished = nil
	c.imageAvailable = nil
}

func (c *Context) createFrameBuffers() error {
	return c.swapChain.CreateFrameBuffers(c.device, c.renderPass, c.depth.View)
}

func (c *Context) destroyFrameBuffers() {
	c.swapChain.DestroyFrameBuffers(c.device)
}

func (c *Context) createVertexBuffer() error {
	buf, err := c.uploadBuffer(c.scene.Mesh.VertexData(), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return err
	}
	c.vertexBuffer = buf
	return nil
}

func (c *Context) destroyVertexBuffer() {
	c.vertexBuffer.Destroy(c.device)
	c.vertexBuffer = nil
}

func (c *Context) createIndexBuffer() error {
	buf, err := c.uploadBuffer(c.scene.Mesh.IndexData(), vk.BufferUsageIndexBufferBit)
	if err != nil {
		return err
	}
	c.indexBuffer = buf
	return nil
}

func (c *Context) destroyIndexBuffer() {
	c.indexBuffer.Destroy(c.device)
	c.indexBuffer = nil
}

// createCommandBuffers allocates one primary command buffer per swapchain image and records the whole
// frame into each of them once.
func (c *Context) createCommandBuffers() error {
	pool, err := common.VKSCreateCommandPool(c.device.D, 0, *c.device.QFamilies.GraphicsFamily)
	if err != nil {
		return fmt.Errorf("create command pool: %w", err)
	}
	buffers, err := common.VKSAllocatePrimaryCommandBuffers(c.device.D, pool, uint32(len(c.swapChain.FrameBuffers)))
	if err != nil {
		vk.DestroyCommandPool(c.device.D, pool, nil)
		return fmt.Errorf("allocate command buffers: %w", err)
	}
	c.commandPool = pool
	c.commandBuffers = buffers
	for i := range buffers {
		if err := c.recordDrawCommands(buffers[i], uint32(i)); err != nil {
			c.destroyCommandBuffers()
			return fmt.Errorf("record command buffer [%d]: %w", i, err)
		}
	}
	return nil
}

func (c *Context) destroyCommandBuffers() {
	// freeing the pool frees its buffers
	vk.DestroyCommandPool(c.device.D, c.commandPool, nil)
	c.commandPool = nil
	c.commandBuffers = nil
}

func (c *Context) recordDrawCommands(buffer vk.CommandBuffer, imageIdx uint32) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
		PInheritanceInfo: nil,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffer, &beginInfo)); err != nil {
		return err
	}

	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: c.swapChain.Extend,
	}
	clearColor := c.cfg.Window.ClearColor
	clearValues := []vk.ClearValue{
		vk.NewClearValue(clearColor[:]),
		vk.NewClearDepthStencil(1, 0),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		PNext:           nil,
		RenderPass:      c.renderPass,
		Framebuffer:     c.swapChain.FrameBuffers[imageIdx],
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)

	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, c.pipeline)
	vk.CmdBindVertexBuffers(buffer, 0, 1, []vk.Buffer{c.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(buffer, c.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, 0, 1, []vk.DescriptorSet{c.descriptors.set}, 0, nil)
	// every object of the scene in one call
	vk.CmdDrawIndexed(buffer, c.indexCount, 1, 0, 0, 0)

	vk.CmdEndRenderPass(buffer)
	return vk.Error(vk.EndCommandBuffer(buffer))
}
