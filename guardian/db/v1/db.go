package v1

import (
	"context"
	"io"
	"path/filepath"

	"github.com/guardian-sec/guardian/internal/schemaver"
)

const (
	DBFileName = "guardian.db"

	// We follow SchemaVer semantics (see https://snowplow.io/blog/introducing-schemaver-for-semantic-versioning-of-schemas)

	// ModelVersion indicates how many breaking schema changes there have been (which will prevent interaction with any historical data)
	// note: this must ALWAYS be "1" in the context of this package.
	ModelVersion = 1

	// Revision indicates how many changes have been introduced which **may** prevent interaction with some historical data
	Revision = 0

	// Addition indicates how many changes have been introduced that are compatible with all historical data
	Addition = 0
)

// SchemaVersion is the schema this package reads and writes.
var SchemaVersion = schemaver.New(ModelVersion, Revision, Addition)

type ReadWriter interface {
	Reader
	Writer

	// Transaction runs fn against a store bound to a single database transaction. The transaction is rolled back
	// when fn returns an error and committed otherwise.
	Transaction(ctx context.Context, fn func(ReadWriter) error) error
}

type Reader interface {
	DBMetadataStoreReader
	ImportSourceStoreReader
	CvssStoreReader
	CweStoreReader
	VrtStoreReader
	CountryStoreReader
	TableCounts() ([]TableCount, error)
	io.Closer
}

type Writer interface {
	DBMetadataStoreWriter
	ImportSourceStoreWriter
	CvssStoreWriter
	CweStoreWriter
	VrtStoreWriter
	CountryStoreWriter
	io.Closer
}

type Config struct {
	DBDirPath string
	Debug     bool
}

func (c Config) DBFilePath() string {
	return filepath.Join(c.DBDirPath, DBFileName)
}

// NewReader opens an existing database for reading.
func NewReader(cfg Config) (Reader, error) {
	return newStore(cfg, false)
}

// NewWriter opens (creating and migrating as needed) a database for writing. An empty DBDirPath yields an
// in-memory database.
func NewWriter(cfg Config) (ReadWriter, error) {
	return newStore(cfg, true)
}
