package reconcile

import "github.com/dmitrijs2005/orion/internal/layout"

// Flag names one kind of drift.
type Flag string

const (
	FlagWrongName      Flag = "Wrong Name"
	FlagDBNeedsUpdate  Flag = "DB needs Update"
	FlagRegister       Flag = "Register in DB"
	FlagMissingFolders Flag = "Missing Folders"
	FlagJSONPath       Flag = "JSON Path Update"
	FlagJSONCode       Flag = "JSON Code Update"
	FlagJSONCorrupt    Flag = "JSON Corrupt"
	FlagMissingJSON    Flag = "Missing JSON"
	FlagMissingIDTag   Flag = "Missing ID Tag"
	FlagSimplifyID     Flag = "Simplify ID"
)

// DBStatus describes how the folder matches a database row.
type DBStatus string

const (
	DBGood    DBStatus = "Good (Exists)"
	DBOldName DBStatus = "Old Name in DB"
	DBMissing DBStatus = "Missing"
)

// IDStatus classifies a shot's database id.
type IDStatus string

const (
	IDSimple  IDStatus = "Simple"
	IDComplex IDStatus = "Complex ID"
	IDUnknown IDStatus = "Unknown"
)

// Report is the analysis of one entity folder.
type Report struct {
	Kind     layout.Kind `json:"kind" yaml:"kind"`
	Folder   string      `json:"folder" yaml:"folder"`
	Path     string      `json:"path" yaml:"path"`
	Target   string      `json:"target" yaml:"target"`
	RelPath  string      `json:"rel_path" yaml:"rel_path"`
	ID       string      `json:"id" yaml:"id"`
	Flags    []Flag      `json:"flags" yaml:"flags"`
	DBStatus DBStatus    `json:"db_status" yaml:"db_status"`
	IDStatus IDStatus    `json:"id_status" yaml:"id_status"`
}

// Healthy reports whether no drift was found.
func (r *Report) Healthy() bool { return len(r.Flags) == 0 }

// Has reports whether f was flagged.
func (r *Report) Has(f Flag) bool {
	for _, x := range r.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// HasAny reports whether any of fs was flagged.
func (r *Report) HasAny(fs ...Flag) bool {
	for _, f := range fs {
		if r.Has(f) {
			return true
		}
	}
	return false
}

// Health is the comma separated flag list, or "Healthy".
func (r *Report) Health() string {
	if r.Healthy() {
		return "Healthy"
	}
	s := ""
	for i, f := range r.Flags {
		if i > 0 {
			s += ", "
		}
		s += string(f)
	}
	return s
}
