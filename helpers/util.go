package helpers

import (
	"strings"
)

// ItemIDFromURL extracts the product identifier from a listing URL of the
// form https://host/.../dp/<id>/... . Falls back to the full URL when no
// /dp/ segment is present so log lines stay distinguishable.
func ItemIDFromURL(link string) string {
	base := strings.Split(link, "?")[0]
	parts := strings.Split(strings.Trim(base, "/"), "/")
	for i, p := range parts {
		if p == "dp" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return base
}
