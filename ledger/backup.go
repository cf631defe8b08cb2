package ledger

import (
	"context"
	"fmt"

	"github.com/RyRy79261/intake-tracker-sub000/internal/backup"
	"github.com/RyRy79261/intake-tracker-sub000/internal/models"
	"github.com/RyRy79261/intake-tracker-sub000/internal/router"
)

// ExportBackup collects the full ledger into a portable document.
func (s *Service) ExportBackup(ctx context.Context, rc router.Config) (*backup.Document, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	doc, err := s.engine.Export(ctx, st)
	if err != nil {
		return nil, err
	}
	s.buffer.Record(models.AuditBulkExport, fmt.Sprintf("%d records", doc.TotalRecords()))
	return doc, nil
}

// ExportIntakeBackup collects only the intake ledger (document version 2).
func (s *Service) ExportIntakeBackup(ctx context.Context, rc router.Config) (*backup.Document, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	doc, err := s.engine.ExportIntake(ctx, st)
	if err != nil {
		return nil, err
	}
	s.buffer.Record(models.AuditBulkExport, fmt.Sprintf("%d records", doc.TotalRecords()))
	return doc, nil
}

// ImportBackup parses raw document bytes and loads them with the chosen
// strategy. Only a document that fails to parse aborts; per-record problems
// are reported in the result counters.
func (s *Service) ImportBackup(ctx context.Context, rc router.Config, data []byte, strategy backup.Strategy) (*backup.Result, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	doc, err := backup.Parse(data)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Import(ctx, st, doc, strategy)
	if err != nil {
		return nil, err
	}
	s.buffer.Record(models.AuditBulkImport,
		fmt.Sprintf("%s: %d imported, %d skipped", strategy, res.Imported, res.Skipped))
	s.cache.Invalidate()
	return res, nil
}

// MigrateToServer copies the local ledger to the remote backend and, only
// after every record has arrived, clears the local store.
func (s *Service) MigrateToServer(ctx context.Context, credential string) (*backup.Result, error) {
	dst, err := s.rt.Remote(credential)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Migrate(ctx, s.rt.Local(), dst)
	if err != nil {
		return res, err
	}
	s.buffer.Record(models.AuditMigration, fmt.Sprintf("to server: %d records", res.Imported))
	s.cache.Invalidate()
	return res, nil
}

// MigrateToLocal copies the remote ledger down into the local store and then
// clears the remote side. Same copy-then-clear contract as MigrateToServer.
func (s *Service) MigrateToLocal(ctx context.Context, credential string) (*backup.Result, error) {
	src, err := s.rt.Remote(credential)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Migrate(ctx, src, s.rt.Local())
	if err != nil {
		return res, err
	}
	s.buffer.Record(models.AuditMigration, fmt.Sprintf("to local: %d records", res.Imported))
	s.cache.Invalidate()
	return res, nil
}

// ArchiveBackup exports the ledger and uploads it to the configured bucket,
// returning the object key.
func (s *Service) ArchiveBackup(ctx context.Context, rc router.Config) (string, error) {
	doc, err := s.ExportBackup(ctx, rc)
	if err != nil {
		return "", err
	}
	archiver := backup.NewArchiver(backup.ArchiveConfig{
		AccessKey:    s.cfg.S3AccessKey,
		SecretKey:    s.cfg.S3SecretKey,
		Bucket:       s.cfg.S3Bucket,
		Region:       s.cfg.S3Region,
		BaseEndpoint: s.cfg.S3BaseEndpoint,
	})
	return archiver.Upload(ctx, doc)
}

// RestoreArchive downloads the archived document under key and imports it.
func (s *Service) RestoreArchive(ctx context.Context, rc router.Config, key string, strategy backup.Strategy) (*backup.Result, error) {
	st, err := s.resolve(rc)
	if err != nil {
		return nil, err
	}
	archiver := backup.NewArchiver(backup.ArchiveConfig{
		AccessKey:    s.cfg.S3AccessKey,
		SecretKey:    s.cfg.S3SecretKey,
		Bucket:       s.cfg.S3Bucket,
		Region:       s.cfg.S3Region,
		BaseEndpoint: s.cfg.S3BaseEndpoint,
	})
	doc, err := archiver.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Import(ctx, st, doc, strategy)
	if err != nil {
		return nil, err
	}
	s.buffer.Record(models.AuditBulkImport,
		fmt.Sprintf("archive %s: %d imported, %d skipped", strategy, res.Imported, res.Skipped))
	s.cache.Invalidate()
	return res, nil
}
