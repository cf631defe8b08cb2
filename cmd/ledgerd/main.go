package main

import (
	"context"
	"log"

	"github.com/RyRy79261/intake-tracker-sub000/internal/config"
	"github.com/RyRy79261/intake-tracker-sub000/ledger"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := ledger.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
