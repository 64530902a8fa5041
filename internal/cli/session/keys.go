package session

// Storage keys shared with the web frontend.
const (
	KeyAuthToken     = "auth_token"
	KeyUserData      = "user_data"
	KeyRole          = "role"
	KeyUserID        = "user_id"
	KeyUserName      = "user_name"
	KeyUserEmail     = "user_email"
	KeyProviderID    = "provider_id"
	KeyProviderName  = "provider_name"
	KeyProviderEmail = "provider_email"
	KeyAdminLoggedIn = "admin_logged_in"
)

// Login pages the client is sent back to when it holds no token.
const (
	UserLoginPage     = "/Frontend/html/user/login.html"
	ProviderLoginPage = "/Frontend/html/provider/provider-login.html"
	AdminLoginPage    = "/Frontend/html/admin/admin-login.html"
)

// Role determines which session fields are persisted and which login page is
// used on redirect.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)
