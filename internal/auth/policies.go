package auth

import (
	"fmt"
	"go-blog-admin/internal/logger"

	"github.com/casbin/casbin/v2"
)

// EditorRole may create, edit and delete posts and categories.
const EditorRole = "editor"

// DefaultPolicies grant read access to everyone and write access to editors.
var DefaultPolicies = [][]string{
	{"anonymous", "/posts", "GET"},
	{"anonymous", "/posts/:id", "GET"},
	{"anonymous", "/categories", "GET"},
	{"anonymous", "/categories/:id", "GET"},

	{EditorRole, "/posts", "POST"},
	{EditorRole, "/posts/:id", "PUT"},
	{EditorRole, "/posts/:id", "DELETE"},
	{EditorRole, "/categories", "POST"},
	{EditorRole, "/categories/:id", "PUT"},
	{EditorRole, "/categories/:id", "DELETE"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules
// and that every configured editor subject holds the editor role.
// It checks if each rule exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, editors []string, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	for _, subject := range editors {
		if has, _ := e.HasRoleForUser(subject, EditorRole); !has {
			if _, err := e.AddRoleForUser(subject, EditorRole); err != nil {
				log.Error(err, fmt.Sprintf("Failed to grant role '%s' to '%s'", EditorRole, subject))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
