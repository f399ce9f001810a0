package main

import (
	"log"

	"github.com/jengzang/records-timeline/internal/api"
	"github.com/jengzang/records-timeline/internal/app"
	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/database"
	"github.com/jengzang/records-timeline/internal/handler"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	a := app.New(db, cfg.Timeline)
	defer a.Runner.Wait()

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Timeline: handler.NewTimelineHandler(a.Timeline, a.Runner),
		Trips:    handler.NewTripHandler(a.TripService, a.Runner),
		Tasks:    handler.NewAnalysisTaskHandler(a.Runner),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
