package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/fabsketch-backend/internal/app"
	"github.com/yungbote/fabsketch-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	a.Start()

	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
