package renderer

import (
	"errors"
	"fmt"
	"math"

	"batch_renderer/common"
	"batch_renderer/model"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"
)

// ErrFrameSkipped reports a frame that was not shown. The loop keeps running.
var ErrFrameSkipped = errors.New("frame skipped")

// usable reports whether an acquire or present call left the swapchain image usable.
func usable(res vk.Result) bool {
	return res == vk.Success || res == vk.Suboptimal
}

// Present draws one frame: it acquires the next swapchain image, rewrites the uniform buffer from block,
// submits the prerecorded command buffer of that image and presents it. Only one frame is in flight, the
// call returns once the present queue is idle.
func (c *Context) Present(block *model.UniformBlock) error {
	var imgIdx uint32
	res := vk.AcquireNextImage(c.device.D, c.swapChain.Handle, math.MaxUint64, c.imageAvailable, nil, &imgIdx)
	if !usable(res) {
		err := vk.Error(res)
		c.log.Warn("Failed to acquire swap chain image", zap.Error(err))
		return fmt.Errorf("%w: acquire: %w", ErrFrameSkipped, err)
	}

	if err := c.uniform.Write(block.Bytes()); err != nil {
		c.releaseImageAvailable()
		return fmt.Errorf("update uniform block: %w", err)
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.commandBuffers[imgIdx]},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.renderFinished},
	}
	if err := vk.Error(vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, nil)); err != nil {
		c.log.Warn("Failed to submit draw command buffer", zap.Uint32("image", imgIdx), zap.Error(err))
		c.releaseImageAvailable()
		return fmt.Errorf("%w: submit: %w", ErrFrameSkipped, err)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapChain.Handle},
		PImageIndices:      []uint32{imgIdx},
		PResults:           nil,
	}
	var presentErr error
	if res := vk.QueuePresent(c.device.PresentQ, &presentInfo); !usable(res) {
		presentErr = vk.Error(res)
		c.log.Warn("Failed to present swap chain image", zap.Uint32("image", imgIdx), zap.Error(presentErr))
	}
	if err := vk.Error(vk.QueueWaitIdle(c.device.PresentQ)); err != nil {
		return fmt.Errorf("wait for present queue: %w", err)
	}
	if presentErr != nil {
		return fmt.Errorf("%w: present: %w", ErrFrameSkipped, presentErr)
	}
	return nil
}

// drainSubmitInfo is an empty batch that only waits on sem, which unsignals it.
func drainSubmitInfo(sem vk.Semaphore) vk.SubmitInfo {
	return vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sem},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
		},
		CommandBufferCount:   0,
		PCommandBuffers:      nil,
		SignalSemaphoreCount: 0,
		PSignalSemaphores:    nil,
	}
}

// releaseImageAvailable consumes the signal of an acquire whose frame was dropped, the next acquire needs
// an unsignaled semaphore. When the empty submit fails too the semaphore is replaced.
func (c *Context) releaseImageAvailable() {
	drain := drainSubmitInfo(c.imageAvailable)
	err := vk.Error(vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{drain}, nil))
	if err == nil {
		err = vk.Error(vk.QueueWaitIdle(c.device.GraphicsQ))
	}
	if err == nil {
		return
	}
	c.log.Warn("Failed to drain image available semaphore, recreating it", zap.Error(err))
	vk.DeviceWaitIdle(c.device.D)
	sem, err := common.VKSCreateSemaphore(c.device.D)
	if err != nil {
		c.log.Error("Failed to recreate image available semaphore", zap.Error(err))
		return
	}
	vk.DestroySemaphore(c.device.D, c.imageAvailable, nil)
	c.imageAvailable = sem
}
