package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSoundNotFound indicates no sound row matched the lookup.
var ErrSoundNotFound = errors.New("sound not found")

// Sound is one registered soundboard clip. Emoji is the reaction label used
// on the guild's sound menu; Cron, when set, schedules automatic plays.
type Sound struct {
	ID        string
	GuildID   string
	Name      string
	Emoji     string
	Cron      string
	FileSize  int64
	CreatedAt time.Time
}

// SoundRepository is the persistence surface the handlers depend on.
type SoundRepository interface {
	Save(ctx context.Context, sound Sound) error
	List(ctx context.Context, guildID string) ([]Sound, error)
	Get(ctx context.Context, id string) (Sound, error)
	Delete(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]Sound, error)
}

type PostgresSoundRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSoundRepository(db *pgxpool.Pool) *PostgresSoundRepository {
	return &PostgresSoundRepository{db: db}
}

var _ SoundRepository = (*PostgresSoundRepository)(nil)

func (r *PostgresSoundRepository) Save(ctx context.Context, sound Sound) error {
	const query = `
	INSERT INTO sound (id, guild_id, name, emoji, cron, file_size)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		guild_id = EXCLUDED.guild_id,
		name = EXCLUDED.name,
		emoji = EXCLUDED.emoji,
		cron = EXCLUDED.cron,
		file_size = EXCLUDED.file_size
	`

	_, err := r.db.Exec(ctx, query,
		sound.ID, sound.GuildID, sound.Name, sound.Emoji, sound.Cron, sound.FileSize)
	if err != nil {
		return fmt.Errorf("failed to save sound: %w", err)
	}
	return nil
}

func (r *PostgresSoundRepository) List(ctx context.Context, guildID string) ([]Sound, error) {
	const query = `
	SELECT id, guild_id, name, emoji, cron, file_size, created_at
	FROM sound
	WHERE guild_id = $1
	ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sounds: %w", err)
	}
	defer rows.Close()

	return scanSounds(rows)
}

func (r *PostgresSoundRepository) Get(ctx context.Context, id string) (Sound, error) {
	const query = `
	SELECT id, guild_id, name, emoji, cron, file_size, created_at
	FROM sound
	WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	var s Sound
	err := row.Scan(&s.ID, &s.GuildID, &s.Name, &s.Emoji, &s.Cron, &s.FileSize, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sound{}, ErrSoundNotFound
	}
	if err != nil {
		return Sound{}, fmt.Errorf("failed to get sound: %w", err)
	}
	return s, nil
}

func (r *PostgresSoundRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sound WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sound: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSoundNotFound
	}
	return nil
}

// ListScheduled returns every sound across all guilds with a cron set.
func (r *PostgresSoundRepository) ListScheduled(ctx context.Context) ([]Sound, error) {
	const query = `
	SELECT id, guild_id, name, emoji, cron, file_size, created_at
	FROM sound
	WHERE cron <> ''
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled sounds: %w", err)
	}
	defer rows.Close()

	return scanSounds(rows)
}

func scanSounds(rows pgx.Rows) ([]Sound, error) {
	var sounds []Sound
	for rows.Next() {
		var s Sound
		if err := rows.Scan(&s.ID, &s.GuildID, &s.Name, &s.Emoji, &s.Cron, &s.FileSize, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sound row: %w", err)
		}
		sounds = append(sounds, s)
	}
	return sounds, rows.Err()
}
