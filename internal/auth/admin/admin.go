package admin

import (
	"crypto/subtle"

	"github.com/alexedwards/argon2id"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

// Verifier сверяет статическую пару логин/пароль из конфигурации.
// Пароль хранится как argon2id-хэш ($argon2id$v=19$m=...), не в открытом виде.
type Verifier struct {
	username string
	hash     string
}

var _ domain.CredentialVerifier = (*Verifier)(nil)

func New(username, passwordHash string) *Verifier {
	return &Verifier{username: username, hash: passwordHash}
}

// Verify не сообщает, какое из полей неверно: обе проверки выполняются всегда.
func (v *Verifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK, err := argon2id.ComparePasswordAndHash(password, v.hash)
	return userOK && err == nil && passOK
}

// HashSecret — хэш для ADMIN_PASSWORD_HASH (используется тестами и тулингом)
func HashSecret(plain string) (string, error) {
	return argon2id.CreateHash(plain, argon2id.DefaultParams)
}
