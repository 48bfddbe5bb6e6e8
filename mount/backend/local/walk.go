package local

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
)

// walkFiles calls fn for every regular file below the directory root.
// A root that is missing or not a directory yields nothing. Symlinks are
// not followed. fn may run concurrently.
func walkFiles(ctx context.Context, root string, fn func(file string, info fs.FileInfo) error) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return nil
	}

	conf := fastwalk.Config{Follow: false}
	return fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		return fn(p, info)
	})
}

// isText reports whether content is detected as some kind of text.
func isText(content []byte) bool {
	for mtype := mimetype.Detect(content); mtype != nil; mtype = mtype.Parent() {
		if mtype.Is("text/plain") {
			return true
		}
	}

	return false
}
