package main

import (
	"context"

	"github.com/dmitrijs2005/lockbox/internal/cli"
	"github.com/dmitrijs2005/lockbox/internal/config"
)

func main() {
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)
	app.Run(context.Background())
}
