package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	// One statement per Exec: the mysql driver refuses multi-statement
	// queries unless the DSN enables them. Order matters for the FKs.
	tables := []struct {
		name string
		ddl  string
	}{
		{"orders", `
	CREATE TABLE IF NOT EXISTS orders (
	  id CHAR(36) NOT NULL,
	  order_number VARCHAR(32) NOT NULL,
	  customer_ref VARCHAR(64) NOT NULL,
	  amount DECIMAL(10,2) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'USD',
	  status VARCHAR(16) NOT NULL,
	  description VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_orders_order_number (order_number),
	  KEY ix_orders_customer_ref (customer_ref)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"payment_methods", `
	CREATE TABLE IF NOT EXISTS payment_methods (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  card_last_four CHAR(4) NOT NULL,
	  card_brand VARCHAR(32) NULL,
	  exp_month TINYINT NOT NULL,
	  exp_year SMALLINT NOT NULL,
	  holder_name VARCHAR(128) NULL,
	  billing_address VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_payment_methods_order_id (order_id),
	  CONSTRAINT fk_payment_methods_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"transactions", `
	CREATE TABLE IF NOT EXISTS transactions (
	  id CHAR(36) NOT NULL,
	  transaction_id VARCHAR(64) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  type VARCHAR(16) NOT NULL,
	  amount DECIMAL(10,2) NOT NULL,
	  status VARCHAR(16) NOT NULL,
	  auth_net_transaction_id VARCHAR(64) NULL,
	  response_code VARCHAR(16) NULL,
	  response_message VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_transactions_transaction_id (transaction_id),
	  KEY ix_transactions_order_id (order_id),
	  CONSTRAINT fk_transactions_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"api_tokens", `
	CREATE TABLE IF NOT EXISTS api_tokens (
	  id CHAR(36) NOT NULL,
	  lookup_key CHAR(16) NOT NULL,
	  token_hash VARCHAR(128) NOT NULL,
	  label VARCHAR(64) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_api_tokens_lookup_key (lookup_key)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	}

	for _, t := range tables {
		if _, err := sqlDB.Exec(t.ddl); err != nil {
			log.Fatalf("Failed to create %s table: %v", t.name, err)
		}
		log.Printf("✓ %s table created successfully", t.name)
	}
}
