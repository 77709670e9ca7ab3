package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/atinyakov/taskly/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and starts the interactive shell.
func main() {
	var (
		baseURL     string
		caFile      string
		sessionPath string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a self-signed server")
	flag.StringVar(&sessionPath, "session", client.DefaultSessionPath(), "path to the session file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Taskly Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	api, err := client.NewAPI(baseURL, caFile)
	if err != nil {
		log.Fatal(err)
	}
	session, err := client.LoadSession(sessionPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shell := client.NewShell(api, session, client.NewPrompter(os.Stdin, os.Stdout), os.Stdout)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
