package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type usersFile struct {
	Users []Account `yaml:"users"`
}

// LoadAccounts reads a YAML users file:
//
//	users:
//	  - email: admin@example.com
//	    name: Administrator
//	    role: admin
//	    password_hash: $2a$10$...
func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var file usersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("%w: users file %s has no users", ErrInvalidAccount, path)
	}
	return file.Users, nil
}
