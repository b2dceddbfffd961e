package common

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

// ErrNoMemoryType is returned when no memory type matches both the resource's type bits and the requested
// property flags.
var ErrNoMemoryType = errors.New("no suitable memory type")

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
	mapped    unsafe.Pointer
}

func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(dc.D, &bufferInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create buffer of %d bytes: %w", size, err)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.D, buf)
	memType, err := FindMemoryType(dc.PdMemoryProps, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, fmt.Errorf("allocate %d bytes of buffer memory: %w", bufRequirements.Size, err)
	}

	// Associate allocated memory with buffer Handle
	if err := VkBindBufferMemory(dc.D, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, fmt.Errorf("bind buffer memory: %w", err)
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

func (b *Buffer) isHostVisible() bool {
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return b.props&want == want
}

// Map keeps the whole buffer mapped until Destroy. The buffer has to be host visible and coherent.
func (b *Buffer) Map(dc *Device) error {
	if !b.isHostVisible() {
		return errors.New("map buffer: memory is not host visible and coherent")
	}
	pData, err := VkMapMemory(dc.D, b.DeviceMem, 0, b.Size, 0)
	if err != nil {
		return fmt.Errorf("map buffer memory: %w", err)
	}
	b.mapped = pData
	return nil
}

// Write copies payload to the start of a mapped buffer.
func (b *Buffer) Write(payload []byte) error {
	if b.mapped == nil {
		return errors.New("write buffer: buffer is not mapped")
	}
	if vk.DeviceSize(len(payload)) > b.Size {
		return fmt.Errorf("write buffer: payload of %d bytes exceeds buffer size %d", len(payload), b.Size)
	}
	vk.Memcopy(b.mapped, payload)
	return nil
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to:
// - have the stated Usage: vk.BufferUsageTransferSrcBit
// - be: vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit
func CopyToDeviceBuffer(dc *Device, deviceBuf *Buffer, payload []byte) error {
	hasTransferUsage := deviceBuf.Usage&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) != 0
	if !hasTransferUsage || !deviceBuf.isHostVisible() {
		return errors.New("copy to device buffer: buffer is not a host visible transfer source")
	}
	// only a "full buffer" worth of payload starting at offset = 0 is allowed
	if deviceBuf.Size != vk.DeviceSize(uint64(len(payload))) {
		return fmt.Errorf("copy to device buffer: payload of %d bytes for buffer of %d bytes", len(payload), deviceBuf.Size)
	}
	pData, err := VkMapMemory(dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return fmt.Errorf("map device memory: %w", err)
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.D, deviceBuf.DeviceMem)
	return nil
}

func (b *Buffer) Destroy(dc *Device) {
	if b == nil {
		return
	}
	if b.mapped != nil {
		vk.UnmapMemory(dc.D, b.DeviceMem)
		b.mapped = nil
	}
	vk.DestroyBuffer(dc.D, b.Handle, nil)
	vk.FreeMemory(dc.D, b.DeviceMem, nil)
}

// Image is a device image together with its backing memory and a full size view.
type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	View      vk.ImageView
	Format    vk.Format
	Width     uint32
	Height    uint32
}

func CreateImage(dc *Device, w uint32, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags) (*Image, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                tiling,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.D, imageInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create %dx%d image: %w", w, h, err)
	}

	memRequirements := ReadImageMemoryRequirements(dc.D, img)
	memType, err := FindMemoryType(dc.PdMemoryProps, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.D, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, fmt.Errorf("allocate image memory: %w", err)
	}
	if err := VkBindImageMemory(dc.D, img, imgMemory, 0); err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, fmt.Errorf("bind image memory: %w", err)
	}
	return &Image{Handle: img, DeviceMem: imgMemory, Format: format, Width: w, Height: h}, nil
}

// CreateView creates the full size 2D view of the image.
func (img *Image) CreateView(dc *Device, aspectFlags vk.ImageAspectFlags) error {
	view, err := VKSCreate2DImageView(dc.D, img.Handle, img.Format, aspectFlags)
	if err != nil {
		return fmt.Errorf("create image view: %w", err)
	}
	img.View = view
	return nil
}

func (img *Image) Destroy(dc *Device) {
	if img == nil {
		return
	}
	if img.View != nil {
		vk.DestroyImageView(dc.D, img.View, nil)
	}
	vk.DestroyImage(dc.D, img.Handle, nil)
	vk.FreeMemory(dc.D, img.DeviceMem, nil)
}

// FindMemoryType returns the first memory type allowed by typeFilter that has all of propFlags.
func FindMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: filter %032b, properties %d", ErrNoMemoryType, typeFilter, propFlags)
}
