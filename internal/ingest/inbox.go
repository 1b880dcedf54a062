package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spendlens/spendlens/internal/importer"
)

// InboxReport summarizes one pass over the inbox directory.
type InboxReport struct {
	Files      int
	Imported   int
	Failed     int
	Added      int
	Duplicates int
}

// ProcessInbox imports every CSV waiting in dir with auto-detected
// importers. Imported files move to dir/processed; files that fail stay put
// for the next pass.
func (s *Service) ProcessInbox(ctx context.Context, dir string, opts Options) (InboxReport, error) {
	files, err := importer.Scan(dir)
	if err != nil {
		return InboxReport{}, err
	}

	var rep InboxReport
	for _, fi := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Files++

		res, err := s.importInboxFile(ctx, fi, opts)
		if err != nil {
			s.log.Error().Err(err).Str("file", fi.Name).Msg("Inbox import failed")
			rep.Failed++
			continue
		}
		if err := importer.MarkProcessed(dir, fi.Name); err != nil {
			s.log.Error().Err(err).Str("file", fi.Name).Msg("Moving imported file failed")
			rep.Failed++
			continue
		}
		rep.Imported++
		rep.Added += res.Added
		rep.Duplicates += res.Duplicates
	}
	return rep, nil
}

func (s *Service) importInboxFile(ctx context.Context, fi importer.FileInfo, opts Options) (FileResult, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return FileResult{}, fmt.Errorf("opening %s: %w", fi.Name, err)
	}
	defer f.Close()

	res, err := s.ImportFile(ctx, f, fi.Name, "", opts)
	if errors.Is(err, ErrNoTransactions) {
		// nothing to import is still done
		return res, nil
	}
	return res, err
}
