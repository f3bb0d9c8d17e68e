package publish

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/orion/internal/common"
	"github.com/dmitrijs2005/orion/internal/cryptox"
	"github.com/dmitrijs2005/orion/internal/filex"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/models"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/storage"
	"github.com/dmitrijs2005/orion/internal/store"
)

const binTimestamp = "20060102_150405"

var now = time.Now

type Options struct {
	DB       *sql.DB
	Repos    store.RepositoryManager
	Resolver *paths.Resolver
	// Mirror is optional.
	Mirror storage.Storage
	Log    logging.Logger
	User   string
}

// Publisher copies exports into .PUBLISHED and keeps the publish history.
type Publisher struct {
	db       *sql.DB
	repos    store.RepositoryManager
	resolver *paths.Resolver
	mirror   storage.Storage
	log      logging.Logger
	user     string
}

func NewPublisher(o Options) *Publisher {
	log := o.Log
	if log == nil {
		log = logging.Nop()
	}
	return &Publisher{
		db:       o.DB,
		repos:    o.Repos,
		resolver: o.Resolver,
		mirror:   o.Mirror,
		log:      log.With("component", "publish"),
		user:     o.User,
	}
}

func (p *Publisher) rel(path string) string {
	return p.resolver.Relative(path).Path
}

// Publish copies file from a task's .EXPORT folder into .EXPORT/.PUBLISHED,
// replacing an earlier copy of the same name, and records the digest. When
// a mirror is configured the copy is uploaded too; a failed upload is
// returned alongside the record.
func (p *Publisher) Publish(ctx context.Context, file string) (*models.Publish, error) {
	if filepath.Base(filepath.Dir(file)) != ExportDir {
		return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: "publish", Path: file,
			Err: errors.New("only files in an " + ExportDir + " folder can be published")}
	}
	fi, err := os.Stat(file)
	if err != nil {
		return nil, common.FS("publish", file, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, &common.OpError{Kind: common.ErrInvalidInput, Op: "publish", Path: file, Err: errors.New("not a regular file")}
	}

	dst := filepath.Join(filepath.Dir(file), PublishedDir, filepath.Base(file))
	if _, err := filex.CopyFile(file, dst); err != nil {
		return nil, err
	}
	digest, size, err := cryptox.FileDigest(dst)
	if err != nil {
		return nil, common.FS("digest", dst, err)
	}

	rec := &models.Publish{
		SourcePath:    p.rel(file),
		PublishedPath: p.rel(dst),
		Digest:        digest,
		Size:          size,
		PublishedBy:   p.user,
		PublishedAt:   now(),
	}
	log := p.log.With("file", rec.PublishedPath)

	var mirrorErr error
	if p.mirror != nil {
		if mirrorErr = p.upload(ctx, dst, rec.PublishedPath, size); mirrorErr == nil {
			rec.MirrorKey = p.mirror.Location(rec.PublishedPath)
		} else {
			log.Error(ctx, "mirror upload failed", "error", mirrorErr)
		}
	}

	if err := p.repos.Publishes(p.db).Create(ctx, rec); err != nil {
		return nil, errors.Join(err, mirrorErr)
	}
	log.Info(ctx, "published", "digest", digest, "size", size)
	return rec, mirrorErr
}

func (p *Publisher) upload(ctx context.Context, path, key string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return common.FS("open", path, err)
	}
	defer f.Close()
	return p.mirror.Put(ctx, key, f, size)
}

// Unpublish moves file from the export area into the task's .BIN folder
// and returns the new path. A name already taken in .BIN gets a
// _YYYYMMDD_HHMMSS suffix. Removing a published copy also drops its
// history and mirrored object.
func (p *Publisher) Unpublish(ctx context.Context, file string) (string, error) {
	task, ok := taskOf(file)
	if !ok {
		return "", &common.OpError{Kind: common.ErrInvalidInput, Op: "unpublish", Path: file,
			Err: errors.New("file is not in an export folder")}
	}
	if !filex.Exists(file) {
		return "", common.FS("unpublish", file, os.ErrNotExist)
	}

	name := filepath.Base(file)
	dst := filepath.Join(task, BinDir, name)
	if filex.Exists(dst) {
		ext := filepath.Ext(name)
		dst = filepath.Join(task, BinDir, fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), now().Format(binTimestamp), ext))
	}
	if err := filex.Move(file, dst); err != nil {
		return "", err
	}
	log := p.log.With("file", p.rel(file))
	log.Info(ctx, "moved to bin", "bin", p.rel(dst))

	if filepath.Base(filepath.Dir(file)) != PublishedDir {
		return dst, nil
	}

	key := p.rel(file)
	var errs []error
	if n, err := p.repos.Publishes(p.db).DeleteByPublishedPath(ctx, key); err != nil {
		errs = append(errs, err)
	} else {
		log.Debug(ctx, "publish history dropped", "rows", n)
	}
	if p.mirror != nil {
		if err := p.mirror.Delete(ctx, key); err != nil {
			log.Error(ctx, "mirror delete failed", "error", err)
			errs = append(errs, err)
		}
	}
	return dst, errors.Join(errs...)
}

// History lists the publishes recorded under taskDir, newest first.
func (p *Publisher) History(ctx context.Context, taskDir string) ([]models.Publish, error) {
	prefix := strings.TrimSuffix(p.rel(taskDir), "/") + "/"
	return p.repos.Publishes(p.db).ListUnder(ctx, prefix)
}

// Verify reports whether the published copy still matches its last
// recorded digest.
func (p *Publisher) Verify(ctx context.Context, published string) (bool, error) {
	rec, err := p.repos.Publishes(p.db).Latest(ctx, p.rel(published))
	if err != nil {
		return false, err
	}
	digest, _, err := cryptox.FileDigest(published)
	if err != nil {
		return false, common.FS("digest", published, err)
	}
	return digest == rec.Digest, nil
}
