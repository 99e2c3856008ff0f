package repository

import (
	"github.com/deppfellow/sovyx-backend/internal/server"
)

type Repositories struct {
	Credentials CredentialStore
}

// NewRepositories picks Postgres-backed stores when a database is connected
// and in-memory ones otherwise.
func NewRepositories(s *server.Server) *Repositories {
	if s.DB != nil {
		return &Repositories{
			Credentials: NewPostgresCredentialStore(s.DB.Pool),
		}
	}

	return &Repositories{
		Credentials: NewMemoryCredentialStore(),
	}
}
