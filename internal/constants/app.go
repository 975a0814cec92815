package constants

const (
	AppStorefrontService = "storefront-service"

	// CartKeyPrefix namespaces every persisted cart payload; the suffix is the
	// session id.
	CartKeyPrefix = "storefront:cart:"
)
