package main

import (
	"context"
	"os"
	"strings"

	"github.com/doeshing/sky-health/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}
	os.Exit(cli.Execute(ctx, opts, os.Args[1:], os.Stdout, os.Stderr))
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("SKY_HEALTH_DEBUG"), "1") || strings.EqualFold(os.Getenv("SKY_HEALTH_DEBUG"), "true")
}
