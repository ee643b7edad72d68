package database

import "database/sql"

// EnsureSchema creates the tables the service needs. Statements are
// idempotent so repeated startups are safe.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS opticians (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL DEFAULT '',
			company VARCHAR(255) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(128) NOT NULL DEFAULT '',
			country VARCHAR(128) NOT NULL DEFAULT '',
			plus_code VARCHAR(32) NOT NULL DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
			loyalty_points INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CHECK (loyalty_points >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			reference VARCHAR(128) NOT NULL DEFAULT '',
			description TEXT,
			price DECIMAL(10,2) NOT NULL DEFAULT 0,
			sale_price DECIMAL(10,2) NOT NULL DEFAULT 0,
			sale_active TINYINT(1) NOT NULL DEFAULT 0,
			stock_qty INT NOT NULL DEFAULT 0,
			in_stock TINYINT(1) NOT NULL DEFAULT 0,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CHECK (stock_qty >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS loyalty_products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			points_cost INT NOT NULL,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			product_id BIGINT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
		`CREATE TABLE IF NOT EXISTS loyalty_redemptions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			optician_id BIGINT NOT NULL,
			total_points INT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
			approved_at DATETIME NULL,
			approved_by BIGINT NULL,
			rejected_at DATETIME NULL,
			rejection_reason VARCHAR(512) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (optician_id) REFERENCES opticians(id)
		)`,
		`CREATE TABLE IF NOT EXISTS loyalty_redemption_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			redemption_id BIGINT NOT NULL,
			loyalty_product_id BIGINT NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			quantity INT NOT NULL,
			points_cost INT NOT NULL,
			total_points INT NOT NULL,
			FOREIGN KEY (redemption_id) REFERENCES loyalty_redemptions(id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			optician_id BIGINT NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
			source VARCHAR(16) NOT NULL DEFAULT 'OPTICIAN',
			created_by BIGINT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (optician_id) REFERENCES opticians(id)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			reference VARCHAR(128) NOT NULL DEFAULT '',
			unit_price DECIMAL(10,2) NOT NULL,
			sale_price DECIMAL(10,2) NOT NULL DEFAULT 0,
			discount DECIMAL(10,2) NOT NULL DEFAULT 0,
			quantity INT NOT NULL,
			line_total DECIMAL(10,2) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
			confirmed_at DATETIME NULL,
			confirmed_by BIGINT NULL,
			cancelled_at DATETIME NULL,
			cancelled_by BIGINT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id)
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			subject VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			channel VARCHAR(16) NOT NULL,
			created_by BIGINT NOT NULL,
			recipient_count INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
