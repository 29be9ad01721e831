package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophmail/internal/client/cli"
	"github.com/dmitrijs2005/gophmail/internal/client/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cli.NewApp(cfg).Run(context.Background())
}
