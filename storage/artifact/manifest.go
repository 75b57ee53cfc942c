package artifact

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/qamatch/storage"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the store layout version written by Save.
const FormatVersion = 1

// File names inside a store directory.
const (
	IndexFile      = "qa_index.bin"
	VocabularyFile = "vocabulary.bin"
	MetadataDir    = "metadata"
	ManifestFile   = "manifest.yaml"
)

// Manifest describes one saved store.
type Manifest struct {
	Version     int       `yaml:"version"`
	Rows        int       `yaml:"rows"`
	Dimension   int       `yaml:"dimension"`
	MaxFeatures int       `yaml:"max_features"`
	CreatedAt   time.Time `yaml:"created_at"`
	Checksums   Checksums `yaml:"checksums"`
}

// tablePattern matches the immutable table files of the metadata database.
const tablePattern = "*.sst"

// Checksums holds hex encoded BLAKE2b-256 digests of the binary files.
// Metadata maps each table file of the metadata database to its digest.
type Checksums struct {
	Index      string            `yaml:"index"`
	Vocabulary string            `yaml:"vocabulary"`
	Metadata   map[string]string `yaml:"metadata"`
}

// ReadManifest reads and decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrMissingArtifact, ManifestFile)
		}
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrCorruptArtifact, ManifestFile, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", storage.ErrUnsupportedVersion, m.Version)
	}
	if m.Rows < 0 || m.Dimension < 0 {
		return nil, fmt.Errorf("%w: %s has negative sizes", storage.ErrCorruptArtifact, ManifestFile)
	}
	return &m, nil
}

// WriteManifest encodes m to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Checksum returns the hex encoded BLAKE2b-256 digest of data.
func Checksum(data []byte) (string, error) {
	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checksumFile streams the file at path through BLAKE2b-256.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// metadataTables returns the sorted table file names in dir.
func metadataTables(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, tablePattern))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	sort.Strings(names)
	return names, nil
}

// checksumMetadata digests every table of a closed metadata database.
func checksumMetadata(dir string) (map[string]string, error) {
	names, err := metadataTables(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no tables written to %s", dir)
	}
	sums := make(map[string]string, len(names))
	for _, name := range names {
		sum, err := checksumFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sums[name] = sum
	}
	return sums, nil
}

// verifyMetadata checks that dir holds exactly the tables listed in want and
// that each one matches its digest.
func verifyMetadata(dir string, want map[string]string) error {
	if len(want) == 0 {
		return fmt.Errorf("%w: %s lists no metadata tables", storage.ErrCorruptArtifact, ManifestFile)
	}
	names, err := metadataTables(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := want[name]; !ok {
			return fmt.Errorf("%w: %s/%s is not in the manifest", storage.ErrCorruptArtifact, MetadataDir, name)
		}
	}
	for name, sum := range want {
		if filepath.Base(name) != name {
			return fmt.Errorf("%w: bad table name %q", storage.ErrCorruptArtifact, name)
		}
		got, err := checksumFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s/%s", storage.ErrMissingArtifact, MetadataDir, name)
			}
			return err
		}
		if got != sum {
			return fmt.Errorf("%w: %s/%s checksum mismatch", storage.ErrCorruptArtifact, MetadataDir, name)
		}
	}
	return nil
}

// verify checks data against the expected digest.
func verify(name string, data []byte, want string) error {
	got, err := Checksum(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s checksum mismatch", storage.ErrCorruptArtifact, name)
	}
	return nil
}

// writeFile writes data and syncs it to disk before returning.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
