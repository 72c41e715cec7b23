// Command chegaja runs the ChegaJá marketplace engine.
//
//	chegaja serve     HTTP API, webhook, event ingestion and scheduled hygiene
//	chegaja hygiene   one push-endpoint hygiene run
//	chegaja migrate   create or update the database schema
//
// @title                       ChegaJá Engine API
// @version                     1.0
// @description                 Marketplace engine: payment intents, provider onboarding, push endpoints, in-app notifications, processor webhooks and change-event ingestion.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  EventsToken
// @in                          header
// @name                        Authorization
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/tbourn/chegaja-engine/docs"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chegaja",
		Short:         "ChegaJá marketplace engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newHygieneCmd(), newMigrateCmd())
	return root
}
