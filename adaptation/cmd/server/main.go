package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/docker/docker/client"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/763021701/ttt-plus-plus/adaptation/config"
	constant "github.com/763021701/ttt-plus-plus/adaptation/const"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/ctrl"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/db"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/handler"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/services"
	"github.com/763021701/ttt-plus-plus/adaptation/monitor"
	image "github.com/763021701/ttt-plus-plus/common/docker"
	"github.com/763021701/ttt-plus-plus/common/log"
	"github.com/763021701/ttt-plus-plus/common/util"
)

func Main() {
	cfg := config.GetConfig()
	logger, err := log.GetLogger(&cfg.Logger)
	if err != nil {
		panic(err)
	}

	if cfg.ExecutorMode != services.ExecutorModeContainer {
		if err := util.CheckPythonEnv(util.AdaptationPackages, logger); err != nil {
			panic(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.InitPrometheus("adaptation-runner")
	imageChan := buildImageIfNeeded(ctx, cfg, logger)

	database, err := db.NewDB(cfg, logger)
	if err != nil {
		panic(err)
	}
	if err := database.Migrate(); err != nil {
		panic(err)
	}

	// runs interrupted by a previous shutdown cannot be resumed
	if err := database.MarkInProgressRunsAsFailed(); err != nil {
		panic(err)
	}

	runLogger := log.NewRunLogger(cfg.RunDir)
	c := ctrl.New(database, cfg, runLogger, logger)

	executor, err := services.NewExecutor(database, cfg, runLogger, logger)
	if err != nil {
		panic(err)
	}

	if _, ok := <-imageChan; !ok {
		panic("image build failed")
	}

	if err := executor.Start(ctx); err != nil {
		panic(err)
	}

	engine := gin.New()
	if cfg.Monitor.Enable {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Info("Prometheus monitoring enabled")
	}

	h := handler.New(c, logger)
	h.Register(engine)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Listen and Serve, config port with PORT=X
	go func() {
		logger.Info("starting http server...")
		if err := engine.Run(); err != nil {
			logger.Errorf("HTTP server error: %v", err)
			stop <- os.Interrupt
		}
	}()

	<-stop
	logger.Info("shutting down server...")
}

func buildImageIfNeeded(ctx context.Context, cfg *config.Config, logger log.Logger) chan bool {
	imageChan := make(chan bool, 1)

	if cfg.ExecutorMode != services.ExecutorModeContainer || !cfg.Images.BuildImage {
		imageChan <- true
		close(imageChan)
		return imageChan
	}

	go func() {
		defer close(imageChan)

		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			logger.Errorf("failed to create docker client: %v", err)
			return
		}
		defer cli.Close()

		imageName := cfg.Images.ExecutionImageName
		buildImage := true
		if !cfg.Images.OverrideImage {
			exists, err := image.ImageExists(ctx, cli, imageName)
			if err != nil {
				logger.Errorf("failed to check image existence: %v", err)
				return
			}

			logger.Debugf("Docker image: %s, exist: %v.", imageName, exists)
			if exists {
				buildImage = false
			}
		}

		if buildImage {
			logger.Debugf("build image %s", imageName)
			if err := image.ImageBuild(ctx, cli, constant.AdaptationDockerfilePath, imageName); err != nil {
				logger.Errorf("failed to build image: %v", err)
				return
			}

			logger.Debugf("docker image %s built successfully!", imageName)
		}

		imageChan <- true
	}()

	return imageChan
}
