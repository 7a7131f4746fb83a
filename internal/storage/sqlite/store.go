// Package sqlite persists baked fields in a SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/thermoforge/internal/field"
)

// ErrNotFound is returned when no stored field matches.
var ErrNotFound = field.ErrNotFound

// Record describes one stored field without its payload.
type Record struct {
	Handle     string
	VolumeID   string
	VolumeName string
	Dim        [3]int
	CellSize   float64
	BakedAt    time.Time
	SavedAt    time.Time
	Bytes      int
}

// FieldStore keeps every baked field ever saved, newest last per volume.
// It implements bake.Persister.
type FieldStore struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens (or creates) the database at path and migrates it.
func Open(path string, log *zap.Logger) (*FieldStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	s := &FieldStore{db: db, log: log, now: time.Now}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *FieldStore) Close() error {
	return s.db.Close()
}

// SaveField stores f for volumeID and returns a new handle.
func (s *FieldStore) SaveField(volumeID string, f *field.Field) (string, error) {
	return s.SaveNamed(volumeID, "", f)
}

// SaveNamed is SaveField with a human-readable volume name for listings.
func (s *FieldStore) SaveNamed(volumeID, name string, f *field.Field) (string, error) {
	if f == nil {
		return "", fmt.Errorf("saving field for %s: %w", volumeID, field.ErrEmptyGrid)
	}
	blob, err := field.Encode(f)
	if err != nil {
		return "", fmt.Errorf("encoding field for %s: %w", volumeID, err)
	}

	handle := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO baked_fields
			(handle, volume_id, volume_name, dim_x, dim_y, dim_z, cell_size, baked_at, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		handle, volumeID, name, f.Dim[0], f.Dim[1], f.Dim[2], f.CellSize,
		f.BakedAt.UnixNano(), blob, s.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("inserting field for %s: %w", volumeID, err)
	}

	s.log.Debug("field saved",
		zap.String("volume", volumeID),
		zap.String("handle", handle),
		zap.Int("bytes", len(blob)))
	return handle, nil
}

// Load returns the field stored under handle.
func (s *FieldStore) Load(handle string) (*field.Field, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT payload FROM baked_fields WHERE handle = ?`, handle).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: handle %s", ErrNotFound, handle)
	}
	if err != nil {
		return nil, fmt.Errorf("loading field %s: %w", handle, err)
	}
	return decode(handle, blob)
}

// LatestForVolume returns the most recently saved field of volumeID.
func (s *FieldStore) LatestForVolume(volumeID string) (*field.Field, Record, error) {
	row := s.db.QueryRow(`
		SELECT `+recordColumns+`, payload FROM baked_fields
		WHERE volume_id = ? ORDER BY seq DESC LIMIT 1`, volumeID)

	var rec Record
	var blob []byte
	err := scanRecord(row, &rec, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Record{}, fmt.Errorf("%w: volume %s", ErrNotFound, volumeID)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("loading latest field for %s: %w", volumeID, err)
	}
	f, err := decode(rec.Handle, blob)
	if err != nil {
		return nil, Record{}, err
	}
	return f, rec, nil
}

// Latest is LatestForVolume without the record.
func (s *FieldStore) Latest(volumeID string) (*field.Field, error) {
	f, _, err := s.LatestForVolume(volumeID)
	return f, err
}

// List returns stored records, oldest first. An empty volumeID lists all.
func (s *FieldStore) List(volumeID string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM baked_fields`
	var args []any
	if volumeID != "" {
		query += ` WHERE volume_id = ?`
		args = append(args, volumeID)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec, nil); err != nil {
			return nil, fmt.Errorf("scanning field record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the field stored under handle.
func (s *FieldStore) Delete(handle string) error {
	res, err := s.db.Exec(`DELETE FROM baked_fields WHERE handle = ?`, handle)
	if err != nil {
		return fmt.Errorf("deleting field %s: %w", handle, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: handle %s", ErrNotFound, handle)
	}
	return nil
}

// Prune keeps the newest keep fields of volumeID and deletes the rest.
func (s *FieldStore) Prune(volumeID string, keep int) (int, error) {
	res, err := s.db.Exec(`
		DELETE FROM baked_fields
		WHERE volume_id = ? AND seq NOT IN (
			SELECT seq FROM baked_fields WHERE volume_id = ? ORDER BY seq DESC LIMIT ?
		)`, volumeID, volumeID, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("pruning fields of %s: %w", volumeID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const recordColumns = `handle, volume_id, volume_name, dim_x, dim_y, dim_z, cell_size, baked_at, created_at, length(payload)`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, rec *Record, blob *[]byte) error {
	var bakedAt, savedAt int64
	dest := []any{
		&rec.Handle, &rec.VolumeID, &rec.VolumeName,
		&rec.Dim[0], &rec.Dim[1], &rec.Dim[2],
		&rec.CellSize, &bakedAt, &savedAt, &rec.Bytes,
	}
	if blob != nil {
		dest = append(dest, blob)
	}
	if err := sc.Scan(dest...); err != nil {
		return err
	}
	rec.BakedAt = time.Unix(0, bakedAt).UTC()
	rec.SavedAt = time.Unix(0, savedAt).UTC()
	return nil
}

func decode(handle string, blob []byte) (*field.Field, error) {
	f, err := field.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding field %s: %w", handle, err)
	}
	return f, nil
}
