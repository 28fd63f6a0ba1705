package session

import (
	"net/http"
	"time"

	"go-blog-admin/internal/config"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

// New creates a session manager persisting sessions in the application
// database, using the store that matches the database driver.
func New(cfg config.SessionConfig, db *sqlx.DB, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch db.DriverName() {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "sqlite3":
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	sm.Cookie.Persist = true
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

var _ Manager = (*scs.SessionManager)(nil)
