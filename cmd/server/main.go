// cmd/server/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/app"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/config"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	application, err := app.New(cfg, app.Options{})
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting crisis touchpoint server", map[string]interface{}{
		"addr":         cfg.Address(),
		"scenario_dir": cfg.ScenarioDir,
	})
	if err := application.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("server stopped", nil)
}
