package main

import (
	"Go-Receipt-Vault/cmd/config"
	migration "Go-Receipt-Vault/cmd/database/migrate"
	"Go-Receipt-Vault/internal/utils"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	utils.LoadConfig()

	zerolog.TimeFieldFormat = time.RFC3339
	if utils.GetConfig("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
