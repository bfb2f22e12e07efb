package domain

// User - учетная запись пользователя системы
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Никогда не возвращаем в JSON
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Credentials - данные для входа
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember,omitempty"`
}

// Registration - данные для регистрации нового пользователя
// Подтверждение пароля должно совпадать с паролем
type Registration struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// AuthResponse - ответ сервера на вход или регистрацию
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
