package credentials

import (
	"context"
	"os"
	"strings"
)

// EnvVar is the environment variable consulted first for the API key.
const EnvVar = "NANOBANANA_API_KEY"

// EnvProvider reads the key from an environment variable on every lookup so
// values injected by godotenv after startup are honoured.
type EnvProvider struct {
	Var string
}

// NewEnvProvider returns a provider for EnvVar.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{Var: EnvVar}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Lookup(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(p.Var)), nil
}
