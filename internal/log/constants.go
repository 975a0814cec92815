package log

const (
	KeyAppName    = "app"
	KeyTag        = "tag"
	KeyProcess    = "process"
	KeyRequestID  = "requestId"
	KeyConfig     = "config"
	KeySessionID  = "sessionId"
	KeyCartKey    = "cartKey"
	KeyCartItems  = "cartItems"
	KeyProductID  = "productId"
	KeyQuantity   = "quantity"
	KeyCategory   = "category"
	KeyQuery      = "query"
	KeyOrderID    = "orderId"
	KeyStep       = "checkoutStep"
	KeyMethod     = "paymentMethod"
	KeySubtotal   = "subtotal"
	KeyTotal      = "total"
	KeyCacheKey   = "cacheKey"
	KeyDbURL      = "dbUrl"
	KeyRequest    = "request"
	KeyHeader     = "header"
	KeyBody       = "body"
	KeyRequestIP  = "requesterIP"
	KeyRequestURI = "requestURI"
)
