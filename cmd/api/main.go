package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"cardgate.io/app/internal/gateway/authnet"
	apphttp "cardgate.io/app/internal/http"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	env := os.Getenv("AUTHNET_ENV")
	if env == "" {
		env = authnet.EnvSandbox
	}
	gw, err := authnet.New(authnet.Config{
		Environment:    env,
		LoginID:        os.Getenv("AUTHNET_LOGIN_ID"),
		TransactionKey: os.Getenv("AUTHNET_TRANSACTION_KEY"),
	})
	if err != nil {
		log.Fatalf("failed to build gateway client: %v", err)
	}

	r := apphttp.NewRouter(logger, db, gw, apphttp.Config{
		BootstrapToken: os.Getenv("AUTH_BOOTSTRAP_TOKEN"),
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
