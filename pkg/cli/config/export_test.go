package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(localBackend, sqlitePath, cloudBackend, projectID string) *Repository {
	return &Repository{
		localBackend: localBackend,
		sqlitePath:   sqlitePath,
		cloudBackend: cloudBackend,
		projectID:    projectID,
	}
}

// NewIdentityForTest creates an Identity config for testing purposes
func NewIdentityForTest(provider, firebaseProjectID, staticAccountID string) *Identity {
	return &Identity{
		provider:          provider,
		firebaseProjectID: firebaseProjectID,
		staticAccountID:   staticAccountID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
