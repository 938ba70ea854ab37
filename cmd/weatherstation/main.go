package main

import (
	"context"
	"os"

	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/patterns/internal/demo"
)

func main() {
	ctx := context.Background()
	l := &logging.Logger{Out: os.Stderr}

	c, err := demo.LoadConfig()
	if err != nil {
		l.Fatal(ctx, "invalid configuration", logging.ErrField(err))
		os.Exit(1)
	}
	l.Level = logging.Level(c.LogLevel)

	if err := demo.Run(ctx, c, os.Stdout, l); err != nil {
		l.Fatal(ctx, "weather station failed", logging.ErrField(err))
		os.Exit(1)
	}
}
