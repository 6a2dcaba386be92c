package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/JackJackJ/claudia/common/version"
	"github.com/JackJackJ/claudia/internal/claudia/app"
	"github.com/JackJackJ/claudia/internal/claudia/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Claudia\nVersion: %s\nCommit: %s\nBuild Time: %s\n",
			version.Version, version.GitCommit, version.BuildTime)
		return
	}

	fmt.Printf("Claudia %s\n\n", version.Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	claudia, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize Claudia: %v\n", err)
		os.Exit(1)
	}
	defer claudia.Stop()

	if err := claudia.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running Claudia: %v\n", err)
		os.Exit(1)
	}
}
