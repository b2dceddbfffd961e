package renderer

import (
	"errors"
	"fmt"
	"os"

	"batch_renderer/common"
	"batch_renderer/logger"

	vk "github.com/goki/vulkan"
	"go.uber.org/zap"
)

// LoadVert reads a '.spv' file with the expectation of it containing a vertex shader for later use in a
// render pipeline. For this, a shader module (containing the shader code) and its vk.PipelineShaderStageCreateInfo
// is returned. Which is required to bind the shader to the pipeline. block lists the member offsets the
// frame block has to be compiled with.
func LoadVert(d vk.Device, path string, block []uint32) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(d, path, vk.ShaderStageVertexBit, block)
}

// LoadFrag is LoadVert for fragment shaders.
func LoadFrag(d vk.Device, path string, block []uint32) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadStage(d, path, vk.ShaderStageFragmentBit, block)
}

// DeleteShaderMod discards a shader module. As vk.ShaderModule is only meant as a container to move the shader code
// onto device memory, it can be destroyed right after creating a shader stage when binding to a rendering pipeline.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func loadStage(d vk.Device, path string, stage vk.ShaderStageFlagBits, block []uint32) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	code, err := readSpirv(path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	if err := checkBlockLayout(common.AsUint32Arr(code), block); err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, fmt.Errorf("shader file '%s': %w", path, err)
	}
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(code)),
		PCode:    common.AsUint32Arr(code),
	}
	mod, err := common.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, fmt.Errorf("create shader module '%s': %w", path, err)
	}
	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               "main\x00", // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
	return mod, stageInfo, nil
}

// spirvMagic is the first word of every SPIR-V binary.
const spirvMagic = 0x07230203

const (
	spirvHeaderWords = 5
	opMemberDecorate = 72
	decorationOffset = 35
)

var errBlockLayout = errors.New("frame block layout does not match the uniform buffer")

// readSpirv reads a compiled shader and checks that it looks like SPIR-V.
func readSpirv(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader file: %w", err)
	}
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("shader file '%s': size %d is not a multiple of 4", path, len(code))
	}
	if words := common.AsUint32Arr(code); words[0] != spirvMagic {
		return nil, fmt.Errorf("shader file '%s': missing SPIR-V magic number", path)
	}
	logger.Named("renderer").Debug("Read shader file", zap.String("path", path), zap.Int("bytes", len(code)))
	return code, nil
}

// memberOffsets collects the Offset decorations of a SPIR-V module: struct id -> member index -> offset.
func memberOffsets(words []uint32) (map[uint32]map[uint32]uint32, error) {
	structs := map[uint32]map[uint32]uint32{}
	for i := spirvHeaderWords; i < len(words); {
		wordCnt := int(words[i] >> 16)
		opcode := words[i] & 0xffff
		if wordCnt == 0 || i+wordCnt > len(words) {
			return nil, fmt.Errorf("malformed SPIR-V instruction at word %d", i)
		}
		if opcode == opMemberDecorate && wordCnt >= 5 && words[i+3] == decorationOffset {
			id, member := words[i+1], words[i+2]
			if structs[id] == nil {
				structs[id] = map[uint32]uint32{}
			}
			structs[id][member] = words[i+4]
		}
		i += wordCnt
	}
	return structs, nil
}

// checkBlockLayout succeeds when some struct of the module has exactly the member offsets want. Shaders
// compiled for another object capacity place every member after the model array elsewhere.
func checkBlockLayout(words []uint32, want []uint32) error {
	structs, err := memberOffsets(words)
	if err != nil {
		return err
	}
	for _, members := range structs {
		if len(members) != len(want) {
			continue
		}
		match := true
		for idx, off := range want {
			if got, ok := members[uint32(idx)]; !ok || got != off {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return fmt.Errorf("%w: expected member offsets %v", errBlockLayout, want)
}
