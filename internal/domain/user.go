package domain

// User representa una cuenta registrada; la clave del registro es el
// nombre de usuario, sensible a mayusculas. Las cuentas nunca se borran.
type User struct {
	PasswordHash string  `json:"password_hash"`
	Email        string  `json:"email,omitempty"`
	Avatar       *string `json:"avatar"`
}

// Profile es la vista de perfil que consumen las paginas.
type Profile struct {
	Username string  `json:"username"`
	Email    string  `json:"email,omitempty"`
	Avatar   *string `json:"avatar"`
}
