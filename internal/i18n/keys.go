// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Authorization
	KeyAccessDenied = "authorization.access_denied"

	// Users
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserDisabled       = "user.disabled"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Categories
	KeyCategoryCreated  = "category.created"
	KeyCategoryUpdated  = "category.updated"
	KeyCategoryDeleted  = "category.deleted"
	KeyCategoryNotFound = "category.not_found"

	// Addresses
	KeyAddressCreated  = "address.created"
	KeyAddressUpdated  = "address.updated"
	KeyAddressDeleted  = "address.deleted"
	KeyAddressNotFound = "address.not_found"

	// Shopping cart
	KeyCartItemsAdded  = "cart.items_added"
	KeyCartItemRemoved = "cart.item_removed"
	KeyCartNotFound    = "cart.not_found"

	// Orders
	KeyOrderCreated       = "order.created"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderStatusUpdated = "order.status_updated"

	// Ratings
	KeyRatingCreated  = "rating.created"
	KeyRatingUpdated  = "rating.updated"
	KeyRatingDeleted  = "rating.deleted"
	KeyRatingNotFound = "rating.not_found"

	// Lifecycle
	KeyEntityDisabled = "lifecycle.disabled"
	KeyEntityEnabled  = "lifecycle.enabled"

	// Payments
	KeyPaymentSuccess = "payment.success"
	KeyPaymentFailed  = "payment.failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Throttling
	KeyRateLimited = "common.rate_limited"

	// File upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
)
