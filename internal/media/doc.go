// Package media defines the classification record shared by the identification
// and organizer packages.
package media
