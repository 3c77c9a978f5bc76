package sheets

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// LocalCredentialsFile is the last place ResolveCredentials looks.
const LocalCredentialsFile = "service_account.json"

// ErrNoCredentials is returned when no service account file can be found.
var ErrNoCredentials = errors.New("service account JSON not found: pass a credentials path, " +
	"set GOOGLE_APPLICATION_CREDENTIALS, or place " + LocalCredentialsFile + " in the working directory")

// ResolveCredentials picks the service account file: explicit when it
// exists, then GOOGLE_APPLICATION_CREDENTIALS, then ./service_account.json.
func ResolveCredentials(explicit string) (string, error) {
	candidates := []string{
		strings.TrimSpace(explicit),
		strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		LocalCredentialsFile,
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNoCredentials
}

// ServiceAccountEmail reads client_email from a service account file, for
// error hints. It never fails.
func ServiceAccountEmail(path string) string {
	const unknown = "unknown@unknown"
	data, err := os.ReadFile(path)
	if err != nil {
		return unknown
	}
	var sa struct {
		ClientEmail string `json:"client_email"`
	}
	if json.Unmarshal(data, &sa) != nil || sa.ClientEmail == "" {
		return unknown
	}
	return sa.ClientEmail
}
