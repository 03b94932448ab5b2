package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/legalcms/backend/pkg/client"
)

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	fmt.Printf("Testing health endpoint: %s/health\n", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.New(baseURL).Health(ctx)
	if health == nil {
		fmt.Printf("Error connecting to health endpoint: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(health.Services))
	for name := range health.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Status: %s\n", health.Status)
	fmt.Printf("Version: %s\n", health.Version)
	fmt.Printf("Timestamp: %s\n", health.Timestamp)
	for _, name := range names {
		svc := health.Services[name]
		fmt.Printf("  %s: %s", name, svc.Status)
		if svc.Error != "" {
			fmt.Printf(" (%s)", svc.Error)
		}
		fmt.Println()
	}

	if err != nil || health.Status != "ok" {
		fmt.Printf("Health check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Health check passed")
}
