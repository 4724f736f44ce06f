package hub

import "os"

// ResolveToken returns the access token used to fetch model artifacts.
// Precedence: explicit value (config/flag) over WAWACHAT_TOKEN over
// HUGGINGFACE_TOKEN. Empty means no token available; the loader reports
// an auth failure if the artifact is not already cached.
func ResolveToken(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("WAWACHAT_TOKEN"); v != "" {
		return v
	}
	return os.Getenv("HUGGINGFACE_TOKEN")
}
