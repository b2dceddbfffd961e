package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"batch_renderer/common"
	"batch_renderer/config"
	"batch_renderer/logger"
	"batch_renderer/loop"
	"batch_renderer/mesh"
	"batch_renderer/model"
	"batch_renderer/renderer"
	"batch_renderer/simulation"
	"batch_renderer/texture"

	"go.uber.org/zap"
)

func init() {
	// SDL and the Vulkan surface have to stay on the main thread
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting batch renderer",
		zap.String("go", runtime.Version()),
		zap.Int("objects", cfg.Scene.Objects),
		zap.Bool("benchmark", cfg.Benchmark.Enabled),
	)

	if err := run(cfg); err != nil {
		logger.Error("Renderer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	logger.Debug("Random source", zap.Uint64("seed", seed))

	n := cfg.Scene.Objects
	engine := simulation.New(n, cfg.Simulation, rng)
	camera := model.NewCamera(n, float32(cfg.Window.Width)/float32(cfg.Window.Height), cfg.Camera.Speed)
	block, err := initialBlock(n, cfg.Scene.MaxObjects, engine, camera, rng)
	if err != nil {
		return err
	}

	rc, err := renderer.Build(cfg, renderer.Deps{
		LoadScene: func() (*renderer.Scene, error) { return loadScene(cfg, block) },
	})
	if err != nil {
		return fmt.Errorf("build render context: %w", err)
	}
	defer rc.Destroy()
	camera.Aspect = rc.Aspect()

	events := common.NewEventSource(rc.Window())
	var benchmarkFrames uint64
	if cfg.Benchmark.Enabled {
		benchmarkFrames = cfg.Benchmark.Frames
	}
	driver, err := loop.New(loop.Deps{
		Config:    cfg,
		Events:    events,
		Presenter: rc,
		Engine:    engine,
		Clock:     simulation.NewClock(events.Now(), benchmarkFrames),
		Camera:    camera,
		Block:     block,
		Rand:      rng,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return driver.Run(ctx)
}

// initialBlock is the uniform state uploaded with the context: grid positions, the starting camera and
// materials uniform in [0, 1).
func initialBlock(n int, capacity int, engine *simulation.Engine, camera *model.Camera, rng *rand.Rand) (*model.UniformBlock, error) {
	block, err := model.NewUniformBlock(n, capacity)
	if err != nil {
		return nil, err
	}
	if err := block.SetMaterials(model.RandomMaterials(rng, n, 0, 1)); err != nil {
		return nil, err
	}
	if err := block.SetObjects(engine.Positions, engine.Orientations); err != nil {
		return nil, err
	}
	block.View = camera.GetView()
	block.Projection = camera.GetProjection()
	block.Eye = camera.Eye
	return block, nil
}

func loadScene(cfg *config.Config, block *model.UniformBlock) (*renderer.Scene, error) {
	n := cfg.Scene.Objects
	sources, err := mesh.LoadSources(cfg.Scene.Meshes)
	if err != nil {
		return nil, err
	}
	scene, err := mesh.BuildScene(sources, n, float32(cfg.Scene.AtlasResolution))
	if err != nil {
		return nil, err
	}
	bounds := mesh.EstimateBounds(scene.Vertices)
	logger.Debug("Scene bounds",
		zap.Float32("radius", bounds.Radius),
		zap.Float32s("centre", []float32{bounds.Centre.X, bounds.Centre.Y, bounds.Centre.Z}),
	)
	if cfg.Scene.ExportMesh != "" {
		if err := mesh.WriteFile(cfg.Scene.ExportMesh, scene); err != nil {
			return nil, fmt.Errorf("export scene mesh: %w", err)
		}
		logger.Info("Exported scene mesh", zap.String("path", cfg.Scene.ExportMesh))
	}

	atlas, err := texture.Source(cfg.Scene.AtlasTexture, n, cfg.Scene.AtlasResolution)
	if err != nil {
		return nil, err
	}
	return &renderer.Scene{Mesh: scene, Atlas: atlas, Block: block}, nil
}
