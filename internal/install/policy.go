package install

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
	"gopkg.in/ini.v1"
)

// Keyfile group holding sandbox permissions.
const contextGroup = "Context"

// The sandbox capabilities a game may request, by realm.
//
// Any realm not listed is denied outright. Within a listed realm, every
// requested capability must be in its allow-list.
type Policy map[string][]string

// Returns the policy for games on this cabinet. allowedPaths are the only
// filesystem entries a game may request, normally the sockets it uses to
// reach the daemon.
func DefaultPolicy(allowedPaths ...string) Policy {
	return Policy{
		"shared":      {"network", "ipc"},
		"sockets":     {"x11", "pulseaudio"},
		"devices":     {"dri"},
		"filesystems": slices.Clone(allowedPaths),
	}
}

// Checks bundle metadata against the policy.
//
// The metadata is a flatpak-style keyfile. A bundle without a [Context]
// group requests nothing and is allowed. Lists are semicolon-separated, e.g.
// "shared=network;ipc;".
func (p Policy) Check(metadata []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, metadata)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrMetadata, errdefs.ErrInvalidArgument, err)
	}

	sec, err := f.GetSection(contextGroup)
	if err != nil {
		return nil
	}

	for _, key := range sec.Keys() {
		realm := key.Name()
		allowed, ok := p[realm]
		if !ok {
			slog.Warn("bundle requests unknown realm", "realm", realm)
			return fmt.Errorf("%w: realm %q: %w", ErrDisallowed, realm, errdefs.ErrPermissionDenied)
		}

		for _, capability := range splitList(key.String()) {
			if !slices.Contains(allowed, capability) {
				slog.Warn("bundle requests disallowed capability", "realm", realm, "capability", capability)
				return fmt.Errorf("%w: %s=%s: %w", ErrDisallowed, realm, capability, errdefs.ErrPermissionDenied)
			}
		}
	}

	return nil
}

// Splits a keyfile string list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
