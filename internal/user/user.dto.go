package user

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Message  string     `json:"message,omitempty"`
	Stats    *AuthStats `json:"stats,omitempty"`
}

type AuthStats struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}
