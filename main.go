package main

import (
	"context"
	"fmt"
	"os"

	"store-feedback/internal/cli"
	"store-feedback/internal/config"
)

var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	deps := cli.Dependencies{
		Config:  config.Load(),
		Version: version,
	}
	os.Exit(cli.Execute(context.Background(), os.Args[1:], deps, os.Stdout, os.Stderr))
}
