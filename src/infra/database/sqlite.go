// Package database implements the persistence gateway.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lumideck/lumideck/src/media"
)

// SqliteGateway is a SQLite implementation of the media.Gateway interface.
// Playlist id lists, timing rules and mood options are stored as JSON
// columns; everything else is flat.
type SqliteGateway struct {
	db *sql.DB
}

// NewSqliteGateway opens (or creates) the database at path.
func NewSqliteGateway(path string) (*SqliteGateway, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &SqliteGateway{db: db}, nil
}

// Close closes the underlying database handle.
func (d *SqliteGateway) Close() error {
	return d.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT,
			duration_sec INTEGER DEFAULT 0,
			src_kind TEXT NOT NULL,
			src TEXT NOT NULL,
			hash TEXT,
			filename TEXT,
			file_size INTEGER DEFAULT 0,
			added_at TEXT
		);

		CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			src_kind TEXT NOT NULL,
			src TEXT NOT NULL,
			width INTEGER DEFAULT 0,
			height INTEGER DEFAULT 0,
			hash TEXT,
			filename TEXT,
			file_size INTEGER DEFAULT 0,
			added_at TEXT
		);

		CREATE TABLE IF NOT EXISTS music_playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			song_ids TEXT NOT NULL DEFAULT '[]',
			play_order TEXT NOT NULL,
			repeat_mode TEXT NOT NULL,
			crossfade_sec REAL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		);

		CREATE TABLE IF NOT EXISTS photo_playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			photo_ids TEXT NOT NULL DEFAULT '[]',
			timing TEXT NOT NULL,
			randomize BOOLEAN DEFAULT FALSE,
			created_at TEXT,
			updated_at TEXT
		);

		CREATE TABLE IF NOT EXISTS mood_presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			intensity INTEGER NOT NULL,
			filter TEXT,
			options TEXT NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS app_state (
			id TEXT PRIMARY KEY CHECK (id = 'main'),
			snapshot TEXT NOT NULL
		);
	`)
	return err
}

// --- songs ---

func (d *SqliteGateway) ListSongs(ctx context.Context) ([]media.Song, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, artist, duration_sec, src_kind, src, hash, filename, file_size, added_at
		FROM songs ORDER BY added_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []media.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}

func (d *SqliteGateway) GetSong(ctx context.Context, id string) (*media.Song, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, artist, duration_sec, src_kind, src, hash, filename, file_size, added_at
		FROM songs WHERE id = ?
	`, id)
	song, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return song, err
}

func (d *SqliteGateway) UpsertSong(ctx context.Context, song media.Song) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist, duration_sec, src_kind, src, hash, filename, file_size, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			duration_sec = excluded.duration_sec,
			src_kind = excluded.src_kind,
			src = excluded.src,
			hash = excluded.hash,
			filename = excluded.filename,
			file_size = excluded.file_size
	`, song.ID, song.Title, song.Artist, song.DurationSec, string(song.SrcKind), song.Src,
		song.Hash, song.Filename, song.FileSize, song.AddedAt.Format(time.RFC3339))
	return err
}

func (d *SqliteGateway) RemoveSongs(ctx context.Context, ids []string) error {
	return d.removeByIDs(ctx, "songs", ids)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (*media.Song, error) {
	var song media.Song
	var srcKind, addedAt string
	if err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.DurationSec, &srcKind,
		&song.Src, &song.Hash, &song.Filename, &song.FileSize, &addedAt); err != nil {
		return nil, err
	}
	song.SrcKind = media.SourceKind(srcKind)
	song.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
	return &song, nil
}

// --- photos ---

func (d *SqliteGateway) ListPhotos(ctx context.Context) ([]media.Photo, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, src_kind, src, width, height, hash, filename, file_size, added_at
		FROM photos ORDER BY added_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []media.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}
	return photos, rows.Err()
}

func (d *SqliteGateway) GetPhoto(ctx context.Context, id string) (*media.Photo, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, src_kind, src, width, height, hash, filename, file_size, added_at
		FROM photos WHERE id = ?
	`, id)
	photo, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return photo, err
}

func (d *SqliteGateway) UpsertPhoto(ctx context.Context, photo media.Photo) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO photos (id, title, src_kind, src, width, height, hash, filename, file_size, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			src_kind = excluded.src_kind,
			src = excluded.src,
			width = excluded.width,
			height = excluded.height,
			hash = excluded.hash,
			filename = excluded.filename,
			file_size = excluded.file_size
	`, photo.ID, photo.Title, string(photo.SrcKind), photo.Src, photo.Width, photo.Height,
		photo.Hash, photo.Filename, photo.FileSize, photo.AddedAt.Format(time.RFC3339))
	return err
}

func (d *SqliteGateway) RemovePhotos(ctx context.Context, ids []string) error {
	return d.removeByIDs(ctx, "photos", ids)
}

func scanPhoto(row rowScanner) (*media.Photo, error) {
	var photo media.Photo
	var srcKind, addedAt string
	if err := row.Scan(&photo.ID, &photo.Title, &srcKind, &photo.Src, &photo.Width,
		&photo.Height, &photo.Hash, &photo.Filename, &photo.FileSize, &addedAt); err != nil {
		return nil, err
	}
	photo.SrcKind = media.SourceKind(srcKind)
	photo.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
	return &photo, nil
}

// --- music playlists ---

func (d *SqliteGateway) ListMusicPlaylists(ctx context.Context) ([]media.MusicPlaylist, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, song_ids, play_order, repeat_mode, crossfade_sec, created_at, updated_at
		FROM music_playlists ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []media.MusicPlaylist
	for rows.Next() {
		playlist, err := scanMusicPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}
	return playlists, rows.Err()
}

func (d *SqliteGateway) GetMusicPlaylist(ctx context.Context, id string) (*media.MusicPlaylist, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, song_ids, play_order, repeat_mode, crossfade_sec, created_at, updated_at
		FROM music_playlists WHERE id = ?
	`, id)
	playlist, err := scanMusicPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return playlist, err
}

func (d *SqliteGateway) UpsertMusicPlaylist(ctx context.Context, playlist media.MusicPlaylist) error {
	songIDs, err := json.Marshal(playlist.SongIDs)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO music_playlists (id, name, song_ids, play_order, repeat_mode, crossfade_sec, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			song_ids = excluded.song_ids,
			play_order = excluded.play_order,
			repeat_mode = excluded.repeat_mode,
			crossfade_sec = excluded.crossfade_sec,
			updated_at = excluded.updated_at
	`, playlist.ID, playlist.Name, string(songIDs), string(playlist.PlayOrder),
		string(playlist.RepeatMode), playlist.CrossfadeSec,
		playlist.CreatedAt.Format(time.RFC3339), playlist.UpdatedAt.Format(time.RFC3339))
	return err
}

func (d *SqliteGateway) RemoveMusicPlaylists(ctx context.Context, ids []string) error {
	return d.removeByIDs(ctx, "music_playlists", ids)
}

func scanMusicPlaylist(row rowScanner) (*media.MusicPlaylist, error) {
	var playlist media.MusicPlaylist
	var songIDs, playOrder, repeatMode, createdAt, updatedAt string
	if err := row.Scan(&playlist.ID, &playlist.Name, &songIDs, &playOrder, &repeatMode,
		&playlist.CrossfadeSec, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(songIDs), &playlist.SongIDs); err != nil {
		return nil, fmt.Errorf("corrupt song id list for playlist %s: %w", playlist.ID, err)
	}
	playlist.PlayOrder = media.PlayOrder(playOrder)
	playlist.RepeatMode = media.RepeatMode(repeatMode)
	playlist.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	playlist.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &playlist, nil
}

// --- photo playlists ---

func (d *SqliteGateway) ListPhotoPlaylists(ctx context.Context) ([]media.PhotoPlaylist, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, description, photo_ids, timing, randomize, created_at, updated_at
		FROM photo_playlists ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []media.PhotoPlaylist
	for rows.Next() {
		playlist, err := scanPhotoPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}
	return playlists, rows.Err()
}

func (d *SqliteGateway) GetPhotoPlaylist(ctx context.Context, id string) (*media.PhotoPlaylist, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, description, photo_ids, timing, randomize, created_at, updated_at
		FROM photo_playlists WHERE id = ?
	`, id)
	playlist, err := scanPhotoPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return playlist, err
}

func (d *SqliteGateway) UpsertPhotoPlaylist(ctx context.Context, playlist media.PhotoPlaylist) error {
	photoIDs, err := json.Marshal(playlist.PhotoIDs)
	if err != nil {
		return err
	}
	timing, err := json.Marshal(playlist.Timing)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO photo_playlists (id, name, description, photo_ids, timing, randomize, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			photo_ids = excluded.photo_ids,
			timing = excluded.timing,
			randomize = excluded.randomize,
			updated_at = excluded.updated_at
	`, playlist.ID, playlist.Name, playlist.Description, string(photoIDs), string(timing),
		playlist.Randomize, playlist.CreatedAt.Format(time.RFC3339), playlist.UpdatedAt.Format(time.RFC3339))
	return err
}

func (d *SqliteGateway) RemovePhotoPlaylists(ctx context.Context, ids []string) error {
	return d.removeByIDs(ctx, "photo_playlists", ids)
}

func scanPhotoPlaylist(row rowScanner) (*media.PhotoPlaylist, error) {
	var playlist media.PhotoPlaylist
	var photoIDs, timing, createdAt, updatedAt string
	if err := row.Scan(&playlist.ID, &playlist.Name, &playlist.Description, &photoIDs,
		&timing, &playlist.Randomize, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(photoIDs), &playlist.PhotoIDs); err != nil {
		return nil, fmt.Errorf("corrupt photo id list for playlist %s: %w", playlist.ID, err)
	}
	if err := json.Unmarshal([]byte(timing), &playlist.Timing); err != nil {
		return nil, fmt.Errorf("corrupt timing rule for playlist %s: %w", playlist.ID, err)
	}
	playlist.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	playlist.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &playlist, nil
}

// --- mood presets ---

func (d *SqliteGateway) ListMoodPresets(ctx context.Context) ([]media.MoodPreset, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, intensity, filter, options FROM mood_presets ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []media.MoodPreset
	for rows.Next() {
		preset, err := scanMoodPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *preset)
	}
	return presets, rows.Err()
}

func (d *SqliteGateway) GetMoodPreset(ctx context.Context, id string) (*media.MoodPreset, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, intensity, filter, options FROM mood_presets WHERE id = ?
	`, id)
	preset, err := scanMoodPreset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return preset, err
}

func (d *SqliteGateway) UpsertMoodPreset(ctx context.Context, preset media.MoodPreset) error {
	options, err := json.Marshal(preset.Options)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO mood_presets (id, name, intensity, filter, options)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			intensity = excluded.intensity,
			filter = excluded.filter,
			options = excluded.options
	`, preset.ID, preset.Name, preset.Intensity, preset.Filter, string(options))
	return err
}

func scanMoodPreset(row rowScanner) (*media.MoodPreset, error) {
	var preset media.MoodPreset
	var options string
	if err := row.Scan(&preset.ID, &preset.Name, &preset.Intensity, &preset.Filter, &options); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(options), &preset.Options); err != nil {
		return nil, fmt.Errorf("corrupt options for preset %s: %w", preset.ID, err)
	}
	return &preset, nil
}

// --- app state ---

func (d *SqliteGateway) Snapshot(ctx context.Context) (*media.AppStateSnapshot, error) {
	var raw string
	err := d.db.QueryRowContext(ctx, `SELECT snapshot FROM app_state WHERE id = 'main'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot media.AppStateSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("corrupt app state snapshot: %w", err)
	}
	return &snapshot, nil
}

func (d *SqliteGateway) SaveSnapshot(ctx context.Context, snapshot media.AppStateSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO app_state (id, snapshot) VALUES ('main', ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot
	`, string(raw))
	return err
}

func (d *SqliteGateway) removeByIDs(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := d.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", table, placeholders), args...)
	return err
}

var _ media.Gateway = (*SqliteGateway)(nil)
