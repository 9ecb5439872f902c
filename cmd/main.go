package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/gradebridge-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}

	err = application.Run(ctx)
	if err != nil {
		application.Log.Error("Server stopped", "error", err)
	} else {
		application.Log.Info("Server stopped")
	}
	application.Close()
	if err != nil {
		os.Exit(1)
	}
}
