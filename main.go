package main

import (
	"github.com/joho/godotenv"

	"github.com/lexloop/lexloop/cmd"
)

func main() {
	// Missing .env is fine, configuration falls back to the environment.
	_ = godotenv.Load()
	cmd.Execute()
}
