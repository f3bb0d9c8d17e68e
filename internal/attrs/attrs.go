// Package attrs toggles platform file attributes used by sidecar files:
// the hidden flag on Windows and an id stamp in extended attributes on
// Unix-like systems. On platforms without the feature the calls are
// no-ops.
package attrs

// IDAttr is the extended attribute carrying an entity id.
const IDAttr = "user.orion.id"
