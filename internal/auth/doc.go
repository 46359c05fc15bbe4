// Package auth provides registration, login and session handling.
//
// Users register with a username (at least 5 characters, unique ignoring
// case) and a password (at least 6 characters, bcrypt-hashed). Logging in
// stores the user ID in an scs session persisted next to the application
// data (SQLite or PostgreSQL, see NewSessionStore).
//
// # Configuration
//
//	SECRET_KEY=<hex-32-bytes>      # Session/CSRF secret, auto-generated if empty
//	SESSION_LIFETIME=24h           # Session duration
//	BCRYPT_COST=12                 # bcrypt cost factor
//	SECURE_COOKIES=false           # HTTPS-only cookies
//	LOGIN_RATE_PER_MINUTE=10       # Login attempts per IP+username
//	LOGIN_BURST=5
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	store, _ := auth.NewSessionStore(sqlDB, db.Dialect)
//	sessions := auth.NewSessionManager(store, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions).Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // 0 on public pages without a session
package auth
