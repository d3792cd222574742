package auth

// Gate is the shared-secret access gate guarding the ask operation. It is
// built once at startup and read-only afterwards, so it may be shared across
// concurrent handlers without synchronization.
type Gate struct {
	required bool
	secrets  map[string]struct{}
}

func NewGate(required bool, secrets []string) *Gate {
	set := make(map[string]struct{}, len(secrets))
	for _, s := range secrets {
		set[s] = struct{}{}
	}
	return &Gate{
		required: required,
		secrets:  set,
	}
}

// Authorize reports whether the candidate secret may pass. When the gate is
// disabled every candidate passes, including the empty string. When enabled,
// only an exact case-sensitive member of the allowlist passes.
func (g *Gate) Authorize(candidate string) bool {
	if !g.required {
		return true
	}
	_, ok := g.secrets[candidate]
	return ok
}

// Required exposes the gate's on/off state so the client can decide whether
// to prompt for a secret at all.
func (g *Gate) Required() bool {
	return g.required
}
