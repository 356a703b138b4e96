// Package domain contains the core types of the Zephyr launcher:
// search results, provider metadata, the application index records,
// plugin manifests, and settings. It has no dependencies on other
// internal packages.
package domain
