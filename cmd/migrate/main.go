package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"stocktrack/config"
	"stocktrack/internal/pkg/database"
	"stocktrack/internal/pkg/logger"
)

// gooseLogger adapta o nosso Logger à interface goose.Logger.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(fmt.Sprintf(format, v...), nil)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal("goose", fmt.Errorf(format, v...))
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuração inválida: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)

	if cfg.StorageDriver != config.DriverPostgres {
		log.Info("STORAGE_DRIVER não é postgres; nada a migrar.", map[string]interface{}{"driver": cfg.StorageDriver})
		return
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", cfg.MigrationsDir, "directory with migration files")
	flag.Parse()

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("goose: falha ao conectar ao DB", err)
	}
	defer db.Close()

	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose: dialeto inválido", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		log.Fatal(fmt.Sprintf("goose %s", command), err)
	}

	log.Info("goose concluído", map[string]interface{}{"command": command, "dir": migrationsDir})
}
