package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/jamiealquiza/envy"
	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"image-stylizer/internal/api"
	"image-stylizer/internal/cache"
	"image-stylizer/internal/cache/memory"
	"image-stylizer/internal/cache/redis"
	"image-stylizer/internal/cmd"
	"image-stylizer/internal/health"
	"image-stylizer/internal/logger"
	"image-stylizer/internal/ops/opencv"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/render"
	"image-stylizer/internal/storage"
	"image-stylizer/internal/tracing"

	fileStorage "image-stylizer/internal/storage/file"
	"image-stylizer/internal/storage/spaces"
)

// Comandline flags
var (
	// Global
	listen    = flag.String("listen", ":8080", "listen address")
	debugMode = flag.Bool("debug", false, "enable debug logging")
	workers   = flag.Int("workers", 0, "number of render workers, 0 for GOMAXPROCS")
	maxUpload = flag.Int64("max-upload-size", api.DefaultMaxUploadSize, "maximum size in bytes of an uploaded source image")

	// Storage
	storageBackend = flag.String("storage", "file", "which storage backend to use (file, spaces)")

	// Storage - File
	storageFilePath = flag.String("storage-file-path", "./test/fixtures/file", "path to the file storage")

	// Storage - Spaces
	storageSpacesSpace          = flag.String("storage-spaces-space", "", "digitalocean space to use")
	storageSpacesEndpoint       = flag.String("storage-spaces-endpoint", "", "spaces endpoint")
	storageSpacesAccessKey      = flag.String("storage-spaces-access-key", "", "spaces access key")
	storageSpacesSecretKey      = flag.String("storage-spaces-secret-key", "", "spaces secret key")
	storageSpacesForcePathStyle = flag.Bool("storage-spaces-force-path-style", false, "use path style addressing, needed for minio")

	// Cache
	cacheBackend = flag.String("cache", "memory", "which cache backend to use (memory, redis)")

	// Cache - Memory
	cacheMemoryEntries = flag.Int("cache-memory-entries", 1000, "maximum number of cached objects, 0 for unbounded")

	// Cache - Redis
	cacheRedisAddress  = flag.String("cache-redis-address", "redis://127.0.0.1:6379", "redis address, may contain authentication details")
	cacheRedisPoolSize = flag.Int("cache-redis-pool-size", 10, "redis connection pool size")
	cacheRedisTTL      = flag.Duration("cache-redis-ttl", 24*time.Hour, "expiry of cached objects, 0 to keep them forever")

	// Healthcheck
	healthCheckImageID = flag.String("health-check-image-id", "1", "image ID to request from the storage to check storage health")
)

func main() {
	// Parse environment variables
	envy.Parse("STYLIZE")

	// Parse commandline flags
	flag.Parse()

	// Initialize the logger
	log := logger.New(*debugMode)

	// Set GOMAXPROCS
	maxprocs.Set(maxprocs.Logger(log.Infof))
	if *workers <= 0 {
		*workers = runtime.GOMAXPROCS(0)
	}

	// Set up context for shutting down
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	// Initialize tracing
	tracerCtx, tracerCancel := context.WithCancel(context.Background())
	defer tracerCancel()

	tracer, err := tracing.New(tracerCtx, log, "stylize-service")
	if err != nil {
		log.Fatalf("error initializing tracing: %s", err)
	}
	defer tracer.Shutdown(tracerCtx)

	// Initialize the storage, cache
	storage, cache, err := setupBackends(tracer)
	if err != nil {
		log.Fatalf("error initializing backends: %s", err)
	}
	defer cache.Shutdown()

	// Initialize the render engine and processor
	provider, err := opencv.New(log)
	if err != nil {
		log.Fatalf("error initializing image operations: %s", err)
	}

	engine, err := pipeline.New(provider, log)
	if err != nil {
		log.Fatalf("error initializing pipeline: %s", err)
	}

	processorCtx, processorCancel := context.WithCancel(context.Background())
	defer processorCancel()

	processor := render.New(processorCtx, log, tracer, *workers, engine, render.NewCache(tracer, cache, storage), cache)

	// Initialize and start the health checker
	checkerCtx, checkerCancel := context.WithCancel(context.Background())
	defer checkerCancel()

	checker := &health.Checker{
		Ctx:      checkerCtx,
		Storage:  storage,
		ImageID:  *healthCheckImageID,
		Cache:    cache,
		Renderer: engine,
		Log:      log,
	}
	go checker.Run()

	// Start and listen on http
	api := &api.API{
		Processor:      processor,
		HealthChecker:  checker,
		Log:            log,
		Tracer:         tracer,
		HandlerTimeout: cmd.HandlerTimeout,
		MaxUploadSize:  *maxUpload,
	}
	server := &http.Server{
		Addr:         *listen,
		Handler:      api.Router(),
		ReadTimeout:  cmd.ReadTimeout,
		WriteTimeout: cmd.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Infof("shutting down the http server: %s", err)
			shutdown()
		}
	}()

	log.WithFields(logrus.Fields{
		"listen":  *listen,
		"storage": *storageBackend,
		"cache":   *cacheBackend,
		"workers": *workers,
	}).Info("http server listening")

	// Wait for shutdown or error
	err = cmd.WaitForInterrupt(shutdownCtx)
	log.Infof("shutting down: %s", err)

	// Shut down http server
	cmd.Shutdown(server, log)
}

func setupBackends(tracer *tracing.Tracer) (storage storage.Provider, cache cache.Provider, err error) {
	// Storage
	switch *storageBackend {
	case "file":
		storage, err = fileStorage.New(*storageFilePath)
	case "spaces":
		storage, err = spaces.New(*storageSpacesSpace, *storageSpacesEndpoint, *storageSpacesAccessKey, *storageSpacesSecretKey, *storageSpacesForcePathStyle)
	default:
		err = fmt.Errorf("invalid storage backend")
	}

	if err != nil {
		return
	}

	// Cache
	switch *cacheBackend {
	case "memory":
		cache = memory.New(*cacheMemoryEntries)
	case "redis":
		cache, err = redis.New(context.Background(), tracer, *cacheRedisAddress, *cacheRedisPoolSize, *cacheRedisTTL)
	default:
		err = fmt.Errorf("invalid cache backend")
	}

	return
}
