package epitopes

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

const googleStoragePrefix = "gs://"

// IsGoogleStorage reports whether path points into a Google Storage bucket.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, googleStoragePrefix)
}

func splitGoogleStoragePath(gsPath string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(gsPath, googleStoragePrefix), "/", 2)
	if len(pathParts) != 2 {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (r readCloser) Close() error {
	return r.closer.Close()
}

// OpenTable opens a prediction table from local disk or, if client is non-nil
// and the path begins with gs://, from Google Storage. Compressed tables are
// decompressed transparently.
func OpenTable(ctx context.Context, tablePath string, client *storage.Client) (io.ReadCloser, error) {
	var raw io.ReadCloser

	if client != nil && IsGoogleStorage(tablePath) {
		bucketName, objectName, err := splitGoogleStoragePath(tablePath)
		if err != nil {
			return nil, err
		}

		rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %s", tablePath, err))
		}
		raw = rdr
	} else {
		f, err := os.Open(tablePath)
		if err != nil {
			return nil, err
		}
		raw = f
	}

	r, err := MaybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %s", tablePath, err))
	}

	return readCloser{Reader: r, closer: raw}, nil
}

// ListTables returns every file directly inside dir whose base name matches
// pattern (a path.Match glob such as "*.csv"). Results are sorted by name so
// that capped scans over a corpus always see the same files.
func ListTables(ctx context.Context, dir, pattern string, client *storage.Client) ([]string, error) {
	if client != nil && IsGoogleStorage(dir) {
		return listGoogleStorage(ctx, dir, pattern, client)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, pfx.Err(err)
	}
	sort.Strings(matches)

	return matches, nil
}

func listGoogleStorage(ctx context.Context, dir, pattern string, client *storage.Client) ([]string, error) {
	bucketName, prefix, err := splitGoogleStoragePath(strings.TrimSuffix(dir, "/") + "/")
	if err != nil {
		return nil, err
	}

	it := client.Bucket(bucketName).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})

	out := make([]string, 0)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		// Synthetic directory entries carry only a prefix.
		if attrs.Name == "" {
			continue
		}

		ok, err := path.Match(pattern, path.Base(attrs.Name))
		if err != nil {
			return nil, pfx.Err(err)
		}
		if !ok {
			continue
		}

		out = append(out, googleStoragePrefix+bucketName+"/"+attrs.Name)
	}
	sort.Strings(out)

	return out, nil
}
