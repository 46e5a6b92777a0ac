package main

import (
	"Go_Site/config"
	"Go_Site/internal/mq"
	"Go_Site/internal/repo"
	"Go_Site/internal/service"
	"Go_Site/internal/storage"
	"Go_Site/internal/task"
	"Go_Site/internal/worker"
	"Go_Site/utils"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

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

	queue := task.NewRabbitQueue(repo.Db)
	svc, err := service.NewDefault(queue)
	if err != nil {
		utils.Log.Fatal("init asset service fail", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mq.Dial()
	if err != nil {
		utils.Log.Fatal("dial rabbitmq fail", zap.Error(err))
	}
	defer client.Close()
	defer mq.ClosePublisher()

	if n, err := queue.RequeuePending(ctx, config.AppConfig.ReconcileStaleAfter); err != nil {
		utils.Log.Warn("requeue unfinished reconcile tasks failed", zap.Int("requeued", n), zap.Error(err))
	} else if n > 0 {
		utils.Log.Info("requeued unfinished reconcile tasks", zap.Int("count", n))
	}

	w := worker.NewReconcileWorker(repo.Db, svc, config.AppConfig)
	utils.Log.Info("reconcile worker started")
	if err := w.Run(ctx, client, config.AppConfig.RabbitMQPrefetch, config.AppConfig.ReconcileWorkerConcurrency); err != nil {
		utils.Log.Fatal("reconcile worker stopped", zap.Error(err))
	}
}
