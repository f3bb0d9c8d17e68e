// Package reconcile detects and repairs drift between the three
// representations of a shot or asset: its database row, its folder tree
// and its sidecar passport.
//
// Analyze inspects one folder and reports flags in a fixed order:
//
//	Wrong Name, DB needs Update | Register in DB, Missing Folders,
//	JSON Path Update, JSON Code Update | JSON Corrupt | Missing JSON,
//	Missing ID Tag, Simplify ID
//
// Repair walks the steps those flags call for, asking a Confirmer before
// each one. Steps are independent: there is no transaction across them,
// and an entity left half repaired is flagged again by the next scan. A
// declined or failed rename stops the entity, since every later step
// depends on the final folder path.
package reconcile
