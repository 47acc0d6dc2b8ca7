// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package main

import (
	"flag"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/mediaengine/internal/api"
	"github.com/ZSC714725/mediaengine/internal/config"
	"github.com/ZSC714725/mediaengine/internal/ffmpeg"
	"github.com/ZSC714725/mediaengine/internal/logger"
	"github.com/ZSC714725/mediaengine/internal/task"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	bind := flag.String("bind", "", "Bind address (overrides config)")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	ffprobeBin := flag.String("ffprobe", "", "FFprobe binary path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}

	bindAddr := cfg.Server.Bind
	if *bind != "" {
		bindAddr = *bind
	}
	ffmpegPath := cfg.FFmpeg.Path
	if *ffmpegBin != "" {
		ffmpegPath = *ffmpegBin
	}
	ffprobePath := cfg.FFmpeg.ProbePath
	if *ffprobeBin != "" {
		ffprobePath = *ffprobeBin
	}

	logg := logger.New("mediaengine ")

	engine, err := ffmpeg.New(ffmpeg.Config{
		Binary:      ffmpegPath,
		ProbeBinary: ffprobePath,
		Logger:      logg,
	})
	if err != nil {
		log.Fatalf("Engine init: %v", err)
	}

	store := task.NewStore(engine, logg, cfg.FFmpeg.MaxLogLines)
	handler := api.NewHandler(store, engine)

	r := gin.Default()
	r.Use(gin.Recovery(), cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/about", handler.About)

		v1.POST("/convert", handler.Convert)
		v1.POST("/metadata", handler.Metadata)
		v1.POST("/probe", handler.Probe)

		v1.GET("/jobs", handler.ListJobs)
		v1.GET("/jobs/:id", handler.GetJob)
		v1.GET("/jobs/:id/report", handler.GetReport)
		v1.POST("/jobs/:id/cancel", handler.CancelJob)
		v1.DELETE("/jobs/:id", handler.DeleteJob)
	}

	log.Printf("MediaEngine listening on %s", bindAddr)
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Server: %v", err)
	}
}
