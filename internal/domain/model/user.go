package model

// Tipos de usuário reconhecidos pela API de presença
const (
	RoleAdmin   = "admin"
	RoleCliente = "cliente_final"
)

// User representa o usuário autenticado na API de presença
type User struct {
	ID          ID     `json:"id"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	TipoUsuario string `json:"tipo_usuario"`
	NomeEmpresa string `json:"nome_empresa,omitempty"`
	EmpresaID   *ID    `json:"empresa_id,omitempty"`
}

// IsAdmin indica se o usuário é administrador
func (u *User) IsAdmin() bool {
	return u != nil && u.TipoUsuario == RoleAdmin
}

// IsCliente indica se o usuário é do RH de uma empresa cliente
func (u *User) IsCliente() bool {
	return u != nil && u.TipoUsuario == RoleCliente
}

// LoginRequest são as credenciais enviadas para /auth/login
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Senha string `json:"senha" binding:"required"`
}

// LoginResponse é a resposta de /auth/login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UsuarioInput é o corpo de criação e atualização de usuários pelo admin
type UsuarioInput struct {
	Nome        string `json:"nome,omitempty"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	Senha       string `json:"senha,omitempty"`
	TipoUsuario string `json:"tipo_usuario,omitempty" binding:"omitempty,oneof=admin cliente_final"`
	EmpresaID   *ID    `json:"empresa_id,omitempty"`
}

// ValidateCreate verifica os campos obrigatórios na criação
func (in UsuarioInput) ValidateCreate() error {
	switch {
	case in.Nome == "":
		return errMissing("nome")
	case in.Email == "":
		return errMissing("email")
	case in.Senha == "":
		return errMissing("senha")
	case in.TipoUsuario == "":
		return errMissing("tipo_usuario")
	}
	return nil
}

type missingFieldError string

func (e missingFieldError) Error() string {
	return "campo obrigatório ausente: " + string(e)
}

func errMissing(field string) error {
	return missingFieldError(field)
}
