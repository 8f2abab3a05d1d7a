package main

import (
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	// Opening the database migrates it.
	return s.loadDatabase()
}
