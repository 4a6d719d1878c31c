package repository

import (
	"github.com/papershack/storefront-orders-service/internal/service"
)

// Compile-time interface checks.
var (
	_ service.OrderStore = (*PostgresOrderRepository)(nil)
	_ service.OrderCache = (*RedisOrderCache)(nil)
)
