package dto

// LoginForm represents the login form submission
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterForm represents the registration form submission
type RegisterForm struct {
	Username     string `form:"username"`
	Password     string `form:"password"`
	Confirmation string `form:"confirmation"`
}
