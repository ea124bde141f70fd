package auth

import "enterprise-portal/internal/models"

// DemoCredential is shown on the login page when the built-in table is used.
type DemoCredential struct {
	Label    string
	Email    string
	Password string
}

var demoTable = []struct {
	credential DemoCredential
	name       string
	role       models.Role
}{
	{DemoCredential{Label: "Admin", Email: "admin@admin.com", Password: "Admin123"}, "Administrator", models.RoleAdmin},
	{DemoCredential{Label: "User", Email: "user@user.com", Password: "User123"}, "Standard User", models.RoleUser},
}

func DemoCredentials() []DemoCredential {
	creds := make([]DemoCredential, 0, len(demoTable))
	for _, entry := range demoTable {
		creds = append(creds, entry.credential)
	}
	return creds
}

// DemoAccounts hashes the built-in demo table with the given bcrypt cost.
func DemoAccounts(cost int) ([]Account, error) {
	accounts := make([]Account, 0, len(demoTable))
	for _, entry := range demoTable {
		hash, err := HashPassword(entry.credential.Password, cost)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, Account{
			Email:        entry.credential.Email,
			Name:         entry.name,
			Role:         entry.role,
			PasswordHash: hash,
		})
	}
	return accounts, nil
}
