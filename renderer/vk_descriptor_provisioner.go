package renderer

import (
	"fmt"

	"batch_renderer/common"

	vk "github.com/goki/vulkan"
)

// DescriptorProvisioner owns the single descriptor set binding the frame block and the atlas texture.
type DescriptorProvisioner struct {
	device vk.Device

	layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
	set    vk.DescriptorSet
}

func NewDescriptorProvisioner(device vk.Device) *DescriptorProvisioner {
	return &DescriptorProvisioner{
		device: device,
	}
}

// layoutBindings describes the shader interface: the uniform frame block at binding 0 is read by both
// stages, the atlas sampler at binding 1 by the fragment stage only.
func layoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:            0,
			DescriptorType:     vk.DescriptorTypeUniformBuffer,
			DescriptorCount:    1,
			StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			PImmutableSamplers: nil,
		},
		{
			Binding:            1,
			DescriptorType:     vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount:    1,
			StageFlags:         vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			PImmutableSamplers: nil,
		},
	}
}

// poolSizes reserves exactly one descriptor per binding.
func poolSizes(bindings []vk.DescriptorSetLayoutBinding) []vk.DescriptorPoolSize {
	sizes := make([]vk.DescriptorPoolSize, len(bindings))
	for i, b := range bindings {
		sizes[i] = vk.DescriptorPoolSize{
			Type:            b.DescriptorType,
			DescriptorCount: b.DescriptorCount,
		}
	}
	return sizes
}

func (dp *DescriptorProvisioner) createDescriptorSetLayout() error {
	bindings := layoutBindings()
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	dsl, err := common.VkCreateDescriptorSetLayout(dp.device, &layoutInfo, nil)
	if err != nil {
		return fmt.Errorf("create descriptor set layout: %w", err)
	}
	dp.layout = dsl
	return nil
}

func (dp *DescriptorProvisioner) createDescriptorPool() error {
	sizes := poolSizes(layoutBindings())
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       1,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	pool, err := common.VkCreateDescriptorPool(dp.device, &poolInfo, nil)
	if err != nil {
		return fmt.Errorf("create descriptor pool: %w", err)
	}
	dp.pool = pool
	return nil
}

// createDescriptorSet allocates the set from the pool and points it at the uniform buffer and the atlas.
func (dp *DescriptorProvisioner) createDescriptorSet(ubo *common.Buffer, sampler vk.Sampler, view vk.ImageView) error {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     dp.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dp.layout},
	}
	sets, err := common.VkAllocateDescriptorSets(dp.device, &allocInfo)
	if err != nil {
		return fmt.Errorf("allocate descriptor set: %w", err)
	}
	dp.set = sets[0]

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: ubo.Handle,
		Offset: 0,
		Range:  ubo.Size,
	}
	imageInfo := vk.DescriptorImageInfo{
		Sampler:     sampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	writes := []vk.WriteDescriptorSet{
		{
			SType:            vk.StructureTypeWriteDescriptorSet,
			PNext:            nil,
			DstSet:           dp.set,
			DstBinding:       0,
			DstArrayElement:  0,
			DescriptorCount:  1,
			DescriptorType:   vk.DescriptorTypeUniformBuffer,
			PImageInfo:       nil,
			PBufferInfo:      []vk.DescriptorBufferInfo{bufferInfo},
			PTexelBufferView: nil,
		},
		{
			SType:            vk.StructureTypeWriteDescriptorSet,
			PNext:            nil,
			DstSet:           dp.set,
			DstBinding:       1, // 'layout(binding = 1) uniform sampler2D atlas;'
			DstArrayElement:  0,
			DescriptorCount:  1,
			DescriptorType:   vk.DescriptorTypeCombinedImageSampler,
			PImageInfo:       []vk.DescriptorImageInfo{imageInfo},
			PBufferInfo:      nil,
			PTexelBufferView: nil,
		},
	}
	vk.UpdateDescriptorSets(dp.device, uint32(len(writes)), writes, 0, nil)
	return nil
}

// destroyPool frees the pool together with the set allocated from it.
func (dp *DescriptorProvisioner) destroyPool() {
	if dp.pool != nil {
		vk.DestroyDescriptorPool(dp.device, dp.pool, nil)
		dp.pool = nil
		dp.set = nil
	}
}

func (dp *DescriptorProvisioner) destroyLayout() {
	if dp.layout != nil {
		vk.DestroyDescriptorSetLayout(dp.device, dp.layout, nil)
		dp.layout = nil
	}
}

// Context stages

func (c *Context) createLayouts() error {
	dp := NewDescriptorProvisioner(c.device.D)
	if err := dp.createDescriptorSetLayout(); err != nil {
		return err
	}
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{dp.layout},
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}
	layout, err := common.VkCreatePipelineLayout(c.device.D, &pipelineLayoutInfo, nil)
	if err != nil {
		dp.destroyLayout()
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	c.descriptors = dp
	c.pipelineLayout = layout
	return nil
}

func (c *Context) destroyLayouts() {
	vk.DestroyPipelineLayout(c.device.D, c.pipelineLayout, nil)
	c.pipelineLayout = nil
	c.descriptors.destroyLayout()
	c.descriptors = nil
}

func (c *Context) createDescriptorSet() error {
	if err := c.descriptors.createDescriptorPool(); err != nil {
		return err
	}
	if err := c.descriptors.createDescriptorSet(c.uniform, c.sampler, c.atlas.View); err != nil {
		c.descriptors.destroyPool()
		return err
	}
	return nil
}

func (c *Context) destroyDescriptorSet() {
	c.descriptors.destroyPool()
}
