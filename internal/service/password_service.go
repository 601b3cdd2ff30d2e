package service

type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
