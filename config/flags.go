package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagObjects    = flag.Int("objects", 0, "Number of batched objects")
	flagMaxObjects = flag.Int("max-objects", 0, "Capacity of the uniform block")
	flagMeshes     = flag.String("meshes", "", "Comma separated source meshes (.mesh or .stl)")
	flagExportMesh = flag.String("export-mesh", "", "Write the batched scene to this .mesh file")
	flagSeed       = flag.Uint64("seed", 0, "Random seed, 0 seeds from the clock")
	flagValidation = flag.Bool("validation", false, "Enable Vulkan validation layers")
	flagBenchmark  = flag.Bool("benchmark", false, "Close after the benchmark frame count and log the average fps")
	flagRunID      = flag.Uint("run-id", 0, "Benchmark run id used in the result file name")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagObjects > 0 {
		cfg.Scene.Objects = *flagObjects
	}
	if *flagMaxObjects > 0 {
		cfg.Scene.MaxObjects = *flagMaxObjects
	}
	if *flagMeshes != "" {
		cfg.Scene.Meshes = strings.Split(*flagMeshes, ",")
	}
	if *flagExportMesh != "" {
		cfg.Scene.ExportMesh = *flagExportMesh
	}
	if *flagSeed != 0 {
		cfg.Scene.Seed = *flagSeed
	}
	if *flagValidation {
		cfg.Vulkan.Validation = true
	}
	if *flagBenchmark {
		cfg.Benchmark.Enabled = true
	}
	if *flagRunID > 0 {
		cfg.Benchmark.RunID = uint32(*flagRunID)
	}
}
