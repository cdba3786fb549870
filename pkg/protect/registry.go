// Package protect holds the read-only registry of identifiers that must
// never be removal targets.
package protect

import (
	"sort"

	"uproot/pkg/backend"
)

// Registry is a per-backend-kind set of protected identifiers. It is built
// once at startup and never mutated, so lookups need no locking. Matching is
// case-sensitive exact match: no globs, no prefixes. A pattern hole in the
// protection set would be a safety bug, not a convenience.
type Registry struct {
	sets map[backend.Kind]map[string]struct{}
}

// NewRegistry builds a registry from per-kind identifier lists.
func NewRegistry(byKind map[backend.Kind][]string) *Registry {
	sets := make(map[backend.Kind]map[string]struct{}, len(byKind))
	for kind, ids := range byKind {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
		sets[kind] = set
	}
	return &Registry{sets: sets}
}

// Protected reports whether the identifier is protected for that kind.
func (r *Registry) Protected(kind backend.Kind, identifier string) bool {
	set, ok := r.sets[kind]
	if !ok {
		return false
	}
	_, protected := set[identifier]
	return protected
}

// Identifiers returns the sorted protected identifiers for one kind.
func (r *Registry) Identifiers(kind backend.Kind) []string {
	set := r.sets[kind]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of protected identifiers.
func (r *Registry) Len() int {
	n := 0
	for _, set := range r.sets {
		n += len(set)
	}
	return n
}

// DefaultIdentifiers returns the built-in protection sets. The APT list
// covers packages whose removal breaks boot, login, networking or the
// package manager itself.
func DefaultIdentifiers() map[backend.Kind][]string {
	return map[backend.Kind][]string{
		backend.KindAPT: {
			// Package management and core userland.
			"apt", "dpkg", "base-files", "base-passwd", "bash", "coreutils",
			"findutils", "grep", "gzip", "sed", "tar", "util-linux",
			// Init, session and device management.
			"systemd", "udev", "dbus", "polkit", "login", "passwd", "adduser",
			// C runtime and TLS trust.
			"libc6", "libstdc++6", "libgcc-s1", "openssl", "ca-certificates",
			// Boot chain.
			"grub-common", "grub-pc", "grub-efi-amd64", "shim-signed",
			"linux-firmware", "intel-microcode", "amd64-microcode",
			// Display and desktop session entry points.
			"xorg", "xserver-xorg", "gdm3", "lightdm", "sddm",
			"gnome-shell", "gnome-core", "kde-plasma-desktop",
			// Networking.
			"network-manager", "wpasupplicant",
			// Distribution meta packages.
			"ubuntu-desktop", "ubuntu-minimal", "ubuntu-standard",
			// Interpreter the distro tooling depends on.
			"python3", "python3-minimal",
		},
		backend.KindSnap: {
			"snapd", "core", "core18", "core20", "core22", "core24",
			"bare", "gtk-common-themes",
		},
		backend.KindFlatpak: {},
		backend.KindAppImage: {},
	}
}
