package main

import (
	"fmt"
	"log"

	"github.com/patric-chuzhbe/useradmin/internal/app"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	fmt.Printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)

	application, err := app.New()
	if err != nil {
		log.Fatal(err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		application.Close()
		log.Fatal(err)
	}
}
