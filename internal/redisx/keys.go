package redisx

import "time"

const (
	// Sesi admin: session:admin:{token} -> JSON {id, username, name}
	KeyAdminSession = "session:admin:%s"

	// Cache status order utk polling publik: order_status:{order_id} -> JSON ringkas
	KeyOrderStatus = "order_status:%s"

	// Rate limit fixed-window: rate:{scope}:{identifier}:{window}
	KeyRateLimit = "rate:%s:%s:%d"
)

var (
	TTLAdminSession = 24 * time.Hour
	TTLStatusCache  = 5 * time.Minute
)
