// Package services implements shot and asset management on top of the
// repositories, the folder layout and the sidecar writer. Every operation
// touches the database and the filesystem in sequence without a shared
// transaction; failures are reported, not rolled back.
package services
