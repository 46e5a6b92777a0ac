package main

import (
	"Go_Site/config"
	"Go_Site/internal/handler"
	"Go_Site/internal/repo"
	"Go_Site/internal/service"
	"Go_Site/internal/storage"
	"Go_Site/internal/task"
	"Go_Site/router"
	"Go_Site/utils"

	"go.uber.org/zap"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	utils.InitLogger(utils.LoggerOptions{
		Level: config.AppConfig.LogLevel,
		File:  config.AppConfig.LogFile,
		JSON:  config.AppConfig.LogJSON,
	})
	defer utils.Log.Sync()

	repo.InitDatabase()
	repo.InitRedis()
	storage.InitStorage()

	svc, err := service.NewDefault(task.NewRabbitQueue(repo.Db))
	if err != nil {
		utils.Log.Fatal("init asset service fail", zap.Error(err))
	}

	r := router.InitRouter(router.Handlers{
		Asset:     handler.NewAssetHandler(svc),
		Content:   handler.NewContentHandler(svc),
		Reconcile: handler.NewReconcileHandler(repo.Db),
	})

	utils.Log.Info("http server listening", zap.String("addr", config.AppConfig.HTTPAddr))
	if err := r.Run(config.AppConfig.HTTPAddr); err != nil {
		utils.Log.Fatal("http server stopped", zap.Error(err))
	}
}
