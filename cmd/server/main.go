package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
