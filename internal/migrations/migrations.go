// Package migrations 在启动时创建数据库表结构
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

type migration struct {
	name string
	stmt string
}

// 按外键依赖顺序排列
var migrations = []migration{
	{"users", `CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		full_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		phone_number VARCHAR(20) NULL UNIQUE,
		address VARCHAR(255) NOT NULL DEFAULT '',
		profile_image_url VARCHAR(500) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'CUSTOMER',
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"addresses", `CREATE TABLE IF NOT EXISTS addresses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		label VARCHAR(50) NOT NULL,
		address_line1 VARCHAR(255) NOT NULL,
		address_line2 VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL,
		zip_code VARCHAR(20) NOT NULL,
		country VARCHAR(100) NOT NULL,
		latitude DOUBLE NULL,
		longitude DOUBLE NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		delivery_instructions VARCHAR(500) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_addresses_user (user_id),
		CONSTRAINT fk_addresses_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"products", `CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(1000) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		image_url VARCHAR(500) NOT NULL DEFAULT '',
		category VARCHAR(30) NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		rating DECIMAL(3,2) NULL,
		review_count INT NOT NULL DEFAULT 0,
		preparation_time_minutes INT NULL,
		calories INT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_products_category (category),
		INDEX idx_products_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"reviews", `CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		rating TINYINT NOT NULL,
		comment VARCHAR(1000) NOT NULL DEFAULT '',
		verified_purchase BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uk_reviews_user_product (user_id, product_id),
		CONSTRAINT fk_reviews_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"orders", `CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		order_number VARCHAR(20) NOT NULL UNIQUE,
		order_date DATETIME NOT NULL,
		status VARCHAR(20) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		tax DECIMAL(10,2) NOT NULL,
		delivery_fee DECIMAL(10,2) NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		payment_id VARCHAR(100) NOT NULL DEFAULT '',
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		delivery_address_id BIGINT NOT NULL,
		special_instructions VARCHAR(500) NOT NULL DEFAULT '',
		estimated_delivery_time DATETIME NULL,
		actual_delivery_time DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_orders_user_date (user_id, order_date),
		INDEX idx_orders_status (status),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_orders_address FOREIGN KEY (delivery_address_id) REFERENCES addresses(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"order_items", `CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		size VARCHAR(20) NOT NULL DEFAULT '',
		customizations VARCHAR(500) NOT NULL DEFAULT '',
		notes VARCHAR(500) NOT NULL DEFAULT '',
		INDEX idx_order_items_order (order_id),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Apply 依次执行全部建表语句，语句本身是幂等的
func Apply(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		util.Logger.Debug("执行数据库迁移", zap.String("table", m.name))
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			util.Logger.Error("数据库迁移失败", zap.String("table", m.name), zap.Error(err))
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	util.Logger.Info("数据库迁移完成", zap.Int("tables", len(migrations)))
	return nil
}
