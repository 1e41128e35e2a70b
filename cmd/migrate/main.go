// migrate aplica o revierte el esquema embebido sobre la base configurada (DB_*).
//
// Uso: go run ./cmd/migrate [up|down|steps N|version|force V]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/traslados-api/internal/infrastructure/migrations"
	"github.com/jhoicas/traslados-api/pkg/config"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := migrations.New(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	if err := run(m, cmd, os.Args[2:]); err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("estado del esquema")
}

func run(m *migrations.Migrator, cmd string, args []string) error {
	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		return nil
	case "steps", "force":
		if len(args) != 1 {
			return fmt.Errorf("%s requiere un argumento numérico", cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%s: %q no es un número", cmd, args[0])
		}
		if cmd == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	default:
		return fmt.Errorf("comando desconocido %q (up, down, steps N, version, force V)", cmd)
	}
}
