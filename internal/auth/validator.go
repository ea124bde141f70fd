package auth

import (
	"fmt"
	"sort"

	"enterprise-portal/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Account is one entry of the credential table. Only bcrypt hashes are
// accepted; see HashPassword.
type Account struct {
	Email        string      `yaml:"email"`
	Name         string      `yaml:"name"`
	Role         models.Role `yaml:"role"`
	PasswordHash string      `yaml:"password_hash"`
}

type account struct {
	user models.User
	hash []byte
}

// Validator maps (email, password) pairs to users from a fixed table.
type Validator struct {
	accounts  map[string]account
	dummyHash []byte
}

func NewValidator(accounts []Account) (*Validator, error) {
	v := &Validator{accounts: make(map[string]account, len(accounts))}
	for _, acc := range accounts {
		key := models.NormalizeEmail(acc.Email)
		if key == "" {
			return nil, fmt.Errorf("%w: email is required", ErrInvalidAccount)
		}
		if !acc.Role.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown role %q", ErrInvalidAccount, key, acc.Role)
		}
		if _, err := bcrypt.Cost([]byte(acc.PasswordHash)); err != nil {
			return nil, fmt.Errorf("%w: %s password_hash: %v", ErrInvalidAccount, key, err)
		}
		if _, dup := v.accounts[key]; dup {
			return nil, fmt.Errorf("%w: duplicate email %s", ErrInvalidAccount, key)
		}
		v.accounts[key] = account{
			user: models.User{Email: key, Role: acc.Role, Name: acc.Name},
			hash: []byte(acc.PasswordHash),
		}
		if v.dummyHash == nil {
			v.dummyHash = []byte(acc.PasswordHash)
		}
	}
	return v, nil
}

func (v *Validator) Validate(email, password string) (models.User, error) {
	acc, ok := v.accounts[models.NormalizeEmail(email)]
	if !ok {
		// Keep the response time of unknown emails close to that of wrong passwords.
		if v.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
		}
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

func (v *Validator) Lookup(email string) (models.User, bool) {
	acc, ok := v.accounts[models.NormalizeEmail(email)]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

func (v *Validator) Users() []models.User {
	users := make([]models.User, 0, len(v.accounts))
	for _, acc := range v.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
