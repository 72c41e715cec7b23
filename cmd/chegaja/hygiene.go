package main

import (
	"github.com/spf13/cobra"

	"github.com/tbourn/chegaja-engine/internal/push"
)

func newHygieneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hygiene",
		Short: "Run one push-endpoint hygiene pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			eng := newEngine(cfg, db, push.LogGateway{})
			return runHygiene(cmd.Context(), eng.endpoints)
		},
	}
}
