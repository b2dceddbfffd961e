package renderer

import (
	"errors"
	"fmt"

	"batch_renderer/common"

	vk "github.com/goki/vulkan"
)

// These auxiliary functions abstract from the raw Vulkan API by assuming some reasonable defaults where
// possible. They differ from the VKS functions in common by being tied to a Context: all one-shot work is
// recorded from the upload pool and submitted to the graphics queue.

var errNoSupportedFormat = errors.New("no supported format")

// singleTime records one command buffer with rec, submits it and waits for the graphics queue to drain.
func (c *Context) singleTime(rec func(cmdBuf vk.CommandBuffer)) error {
	cmdBuf, err := common.VKSBeginSingleTimeCommands(c.device.D, c.uploadPool)
	if err != nil {
		return fmt.Errorf("begin single time commands: %w", err)
	}
	rec(cmdBuf)
	return common.VKSEndSingleTimeCommands(c.device.D, c.uploadPool, c.device.GraphicsQ, cmdBuf)
}

func (c *Context) copyBuffer(src *common.Buffer, dst *common.Buffer, s vk.DeviceSize) error {
	return c.singleTime(func(cmdBuf vk.CommandBuffer) {
		copyRegions := []vk.BufferCopy{
			{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      s,
			},
		}
		vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	})
}

// staging creates a host visible transfer source holding payload. The caller destroys it.
func (c *Context) staging(payload []byte) (*common.Buffer, error) {
	stgBuf, err := common.CreateBuffer(
		c.device,
		vk.DeviceSize(len(payload)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	if err := common.CopyToDeviceBuffer(c.device, stgBuf, payload); err != nil {
		stgBuf.Destroy(c.device)
		return nil, err
	}
	return stgBuf, nil
}

// uploadBuffer creates a device local buffer with the given usage and fills it with payload through a
// staging buffer.
func (c *Context) uploadBuffer(payload []byte, usage vk.BufferUsageFlagBits) (*common.Buffer, error) {
	if len(payload) == 0 {
		return nil, errors.New("upload buffer: empty payload")
	}
	stgBuf, err := c.staging(payload)
	if err != nil {
		return nil, err
	}
	defer stgBuf.Destroy(c.device)

	buf, err := common.CreateBuffer(
		c.device,
		stgBuf.Size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|usage),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}
	if err := c.copyBuffer(stgBuf, buf, stgBuf.Size); err != nil {
		buf.Destroy(c.device)
		return nil, fmt.Errorf("copy staging buffer: %w", err)
	}
	return buf, nil
}

// barrierMasks holds the access masks and pipeline stages of one supported layout transition.
type barrierMasks struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

func transitionMasks(old vk.ImageLayout, new vk.ImageLayout) (barrierMasks, error) {
	switch {
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutTransferDstOptimal:
		return barrierMasks{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil
	case old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal:
		return barrierMasks{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return barrierMasks{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, nil
	}
	return barrierMasks{}, fmt.Errorf("unsupported image layout transition %d -> %d", old, new)
}

// aspectFor is the aspect an image of format has to be addressed with when moved to layout.
func aspectFor(format vk.Format, layout vk.ImageLayout) vk.ImageAspectFlags {
	if layout != vk.ImageLayoutDepthStencilAttachmentOptimal {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	if hasStencilComponent(format) {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
}

func (c *Context) transitionImageLayout(img *common.Image, old vk.ImageLayout, new vk.ImageLayout) error {
	masks, err := transitionMasks(old, new)
	if err != nil {
		return err
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		PNext:               nil,
		SrcAccessMask:       masks.srcAccess,
		DstAccessMask:       masks.dstAccess,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFor(img.Format, new),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	return c.singleTime(func(cmdBuf vk.CommandBuffer) {
		vk.CmdPipelineBarrier(
			cmdBuf,
			masks.srcStage, masks.dstStage,
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier},
		)
	})
}

func (c *Context) copyBufferToImage(buffer *common.Buffer, img *common.Image) error {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{
			Width:  img.Width,
			Height: img.Height,
			Depth:  1,
		},
	}
	return c.singleTime(func(cmdBuf vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(cmdBuf, buffer.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	})
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// pickFormat returns the first candidate whose properties carry all features for the given tiling.
func pickFormat(candidates []vk.Format, props func(vk.Format) vk.FormatProperties, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	for _, format := range candidates {
		fProps := props(format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, errNoSupportedFormat
}

func (c *Context) findDepthFormat() (vk.Format, error) {
	return pickFormat(
		depthCandidates,
		func(f vk.Format) vk.FormatProperties { return common.ReadFormatProperties(c.device.PD, f) },
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
}

var depthCandidates = []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}
