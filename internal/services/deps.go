package services

import (
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/notify"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/sidecar"
	"github.com/dmitrijs2005/orion/internal/store"
)

// Deps are the collaborators shared by the services.
type Deps struct {
	DB       *sql.DB
	Repos    store.RepositoryManager
	Resolver *paths.Resolver
	Sidecars *sidecar.Writer
	Notifier notify.Notifier
	Log      logging.Logger
	User     string
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Sidecars == nil {
		d.Sidecars = sidecar.NewWriter(d.Log)
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	return d
}

// validateName rejects names that cannot be used as a single folder.
func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &common.OpError{Kind: common.ErrInvalidInput, Op: "validate", Path: name, Err: errEmptyName}
	case name == "." || name == "..", strings.ContainsAny(name, `/\`), filepath.Base(name) != name:
		return &common.OpError{Kind: common.ErrInvalidInput, Op: "validate", Path: name, Err: errBadName}
	}
	return nil
}
