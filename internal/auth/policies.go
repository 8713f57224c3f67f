package auth

import (
	"fmt"

	"coaching-site/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Anonymous visitors can read the whole public site; content management
	// is reserved for the 'admin' role, which inherits anonymous access.
	policies := [][]string{
		{"anonymous", "/", "GET"},
		{"anonymous", "/about", "GET"},
		{"anonymous", "/services", "GET"},
		{"anonymous", "/location", "GET"},
		{"anonymous", "/contact", "GET"},
		{"anonymous", "/blog", "GET"},
		{"anonymous", "/blog/*", "GET"},
		{"anonymous", "/api/contact", "POST"},
		{"anonymous", "/api/revalidate", "GET"},
		// CORS preflight requests for the JSON API.
		{"anonymous", "/api/*", "OPTIONS"},
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},
		{"anonymous", "/auth/logout", "GET"},
		{"anonymous", "/robots.txt", "GET"},
		{"anonymous", "/sitemap.xml", "GET"},
		{"anonymous", "/static/*", "GET"},

		{"admin", "/admin", "GET"},
		{"admin", "/admin/*", "GET"},
		{"admin", "/admin/*", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Granting the 'admin' role all permissions of the 'anonymous' role.
	if has, _ := e.HasRoleForUser("admin", "anonymous"); !has {
		if _, err := e.AddRoleForUser("admin", "anonymous"); err != nil {
			log.Error(err, "Failed to add role 'admin' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
