package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/gradebridge-backend/internal/platform/envutil"
)

// ClientOptionsFromEnv reads inline JSON or a key file path; empty means application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""))
	if creds == "" {
		creds = strings.TrimSpace(envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
