package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/api"
	"kgeyst.com/iris/pkg/iris/infrastructure/web"
)

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	_ = godotenv.Load()
	config, err := common.LoadConfigOrDefault("config.yaml")
	if err != nil {
		return err
	}
	if !config.GetBoolOrDefault("debug", false) {
		gin.SetMode(gin.ReleaseMode)
	}
	iris, err := api.NewAPI(config)
	if err != nil {
		return err
	}
	defer iris.Close()
	logger := iris.Logger()
	hub := web.NewHub(logger)
	defer hub.Close()
	iris.AddListener(hub)
	server := &http.Server{
		Addr:              config.GetStringOrDefault("listenAddress", ":8080"),
		Handler:           web.NewServer(iris, iris, iris, hub, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	iris.Welcome()
	logger.WithField("address", server.Addr).Info("listening")
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
