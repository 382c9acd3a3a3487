// internal/adapter/storage/snapshot.go

package storage

import "strings"

// locationKey normalizes a location so "Baltimore, MD" and "baltimore,md" match
func locationKey(location string) string {
	parts := strings.Split(strings.ToLower(location), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}
