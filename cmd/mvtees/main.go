package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pattonwebz/mvtees/internal/cli"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
