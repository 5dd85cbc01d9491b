// Package jellyfin triggers Jellyfin library scans after the sorter has moved
// files into the libraries Jellyfin watches.
package jellyfin
