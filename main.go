package main

import (
	"os"

	"github.com/shsnge/job-application-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
