package domain

import "strings"

// Environment selects which dataset collection names resolve against. It is
// parsed once per request from the environment query parameter and passed
// explicitly down to every store call.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvQA         Environment = "qa"
)

const qaCollectionPrefix = "QA_"

// ParseEnvironment maps a request-level environment tag. Anything other
// than "qa" resolves to production.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(EnvQA)) {
		return EnvQA
	}
	return EnvProduction
}

// Collection resolves a logical collection name for this environment.
// The QA dataset shares the database under a name prefix.
func (e Environment) Collection(name string) string {
	if e == EnvQA {
		return qaCollectionPrefix + name
	}
	return name
}
