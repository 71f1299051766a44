package cli

var (
	NewApp          = newApp
	NewHTTPServer   = newHTTPServer
	SeedUsers       = seedUsers
	LoadEnvFile     = loadEnvFile
	EnvFileFromArgs = envFileFromArgs
	PrintStats      = printStats
	PrintDaily      = printDaily
)
