// Package main provides the entry point for the APK version watcher CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "apkwatch",
	Short: "APK version watcher",
	Long:  "apkwatch checks a public page for a new APK version, downloads and reconciles the artifact against its manifest on change, persists the result, and notifies a Discord webhook. Designed to be invoked once per interval by an external scheduler.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
