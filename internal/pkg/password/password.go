// Package password hashes account credentials with bcrypt. Plaintext exists
// only transiently: inside a pending verification token's payload until the
// email code is confirmed, and in the login/reset request being checked.
package password

import "golang.org/x/crypto/bcrypt"

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports nil only for a matching credential; callers map any error
// to the same unauthorized response so hash and lookup failures are
// indistinguishable to a caller probing accounts.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
