package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const minSecretLength = 32

var (
	// ErrTokenExpired indica que o token de sessão expirou
	ErrTokenExpired = errors.New("token expirado")
	// ErrTokenInvalid indica assinatura, formato ou claims inválidos
	ErrTokenInvalid = errors.New("token inválido")
)

// Claims são os dados carregados no token de sessão entregue ao navegador
type Claims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// KeyManager assina e valida tokens de sessão (HS256)
type KeyManager struct {
	secretKey []byte
	issuer    string
	logger    *zap.Logger
}

// NewKeyManager cria o gerenciador a partir do segredo configurado.
// Com segredo vazio uma chave aleatória é gerada e os tokens deixam de valer após reinício.
func NewKeyManager(secret string, logger *zap.Logger) (*KeyManager, error) {
	key := []byte(secret)

	if secret == "" {
		key = make([]byte, minSecretLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("falha ao gerar chave temporária: %w", err)
		}
		logger.Warn("usando chave JWT temporária; defina DS_AUTH_JWTSECRET em produção")
	}

	if len(key) < minSecretLength {
		return nil, errors.New("jwt secret key muito curta")
	}

	return &KeyManager{
		secretKey: key,
		issuer:    "presenca-dashboard",
		logger:    logger,
	}, nil
}

// GenerateToken gera o token de uma sessão
func (km *KeyManager) GenerateToken(sessionID, userID, role string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    km.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(km.secretKey)
	if err != nil {
		km.logger.Error("falha ao gerar token JWT", zap.Error(err))
		return "", err
	}

	return tokenString, nil
}

// VerifyToken valida o token e retorna suas claims
func (km *KeyManager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return km.secretKey, nil
	}, jwt.WithIssuer(km.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		km.logger.Debug("falha ao validar token JWT", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
