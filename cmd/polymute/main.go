package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"

	"github.com/polymute/polymute/cmd"
	"github.com/polymute/polymute/internal/log"
)

var version = "dev"

type exitCoder interface {
	ExitCode() int
}

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	log.Init(color.Output, color.Error)
	ctx := ctxDoneOnSignal()

	err := cmd.Execute(ctx, buildVersion(version))
	if err != nil {
		log.Errorln(err)
		exitCode = 1
	}

	var coder exitCoder
	if errors.As(err, &coder) {
		exitCode = coder.ExitCode()
	}
}

func ctxDoneOnSignal() context.Context {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-done
		cancel()
		close(done)
	}()

	return ctx
}

func buildVersion(version string) string {
	return fmt.Sprintf("%s %s/%s", version, runtime.GOOS, runtime.GOARCH)
}
