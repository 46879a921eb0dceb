package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files without overriding the environment.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// envBindings maps environment variables onto server and client settings.
// Earlier names win.
var envBindings = []struct {
	names  []string
	target func(*FileConfig) **string
}{
	{[]string{"TYPRR_ADDR"}, func(c *FileConfig) **string { return &c.Server.Addr }},
	{[]string{"TYPRR_DB_DRIVER"}, func(c *FileConfig) **string { return &c.Server.DBDriver }},
	{[]string{"TYPRR_DB_DSN", "DATABASE_URL"}, func(c *FileConfig) **string { return &c.Server.DBDSN }},
	{[]string{"TYPRR_JWT_SECRET", "JWT_SECRET"}, func(c *FileConfig) **string { return &c.Server.JWTSecret }},
	{[]string{"TYPRR_TOKEN_TTL"}, func(c *FileConfig) **string { return &c.Server.TokenTTL }},
	{[]string{"TYPRR_CORS_ORIGIN"}, func(c *FileConfig) **string { return &c.Server.CORSOrigin }},
	{[]string{"TYPRR_API_URL"}, func(c *FileConfig) **string { return &c.Client.APIURL }},
}

// ApplyEnv overlays environment variables on cfg. lookup is usually os.LookupEnv.
// PORT, when set and TYPRR_ADDR is not, listens on ":$PORT".
func ApplyEnv(cfg FileConfig, lookup func(string) (string, bool)) FileConfig {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		for _, name := range b.names {
			if v, ok := lookup(name); ok && v != "" {
				value := v
				*b.target(&cfg) = &value
				break
			}
		}
	}
	if _, ok := lookup("TYPRR_ADDR"); !ok {
		if port, ok := lookup("PORT"); ok && port != "" {
			addr := ":" + port
			cfg.Server.Addr = &addr
		}
	}
	return cfg
}
