package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/messagely/internal/buildinfo"
	"github.com/dmitrijs2005/messagely/internal/server"
	"github.com/dmitrijs2005/messagely/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := server.RunNotifier(context.Background(), cfg); err != nil {
		log.Fatalf("%v", err)
	}

}
