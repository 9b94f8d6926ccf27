package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/saheli56/Temple-Run/internal/vision"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Profile represents a named tuning preset stored in the database. The skin
// bounds usually come out of a calibration run.
type Profile struct {
	ID             string
	Name           string
	SkinBounds     vision.HSVBounds
	MinContourArea float64
	Cooldown       time.Duration
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (id, name, hue_low, sat_low, val_low, hue_high, sat_high, val_high,
		                       min_contour_area, cooldown_ms, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name,
		p.SkinBounds.HMin, p.SkinBounds.SMin, p.SkinBounds.VMin,
		p.SkinBounds.HMax, p.SkinBounds.SMax, p.SkinBounds.VMax,
		p.MinContourArea, p.Cooldown.Milliseconds(), p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	p := &Profile{}
	var cooldownMs int64
	var active int

	err := row.Scan(&p.ID, &p.Name,
		&p.SkinBounds.HMin, &p.SkinBounds.SMin, &p.SkinBounds.VMin,
		&p.SkinBounds.HMax, &p.SkinBounds.SMax, &p.SkinBounds.VMax,
		&p.MinContourArea, &cooldownMs, &active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Cooldown = time.Duration(cooldownMs) * time.Millisecond
	p.Active = active != 0
	return p, nil
}

const profileColumns = `id, name, hue_low, sat_low, val_low, hue_high, sat_high, val_high,
	min_contour_area, cooldown_ms, active, created_at, updated_at`

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetActive retrieves the active profile. Returns nil, nil when no profile
// has been activated.
func (r *ProfileRepository) GetActive() (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(
		`SELECT ` + profileColumns + ` FROM profiles WHERE active = 1 LIMIT 1`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all profiles from the database.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(
		`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile in the database.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, hue_low = ?, sat_low = ?, val_low = ?,
		        hue_high = ?, sat_high = ?, val_high = ?,
		        min_contour_area = ?, cooldown_ms = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.SkinBounds.HMin, p.SkinBounds.SMin, p.SkinBounds.VMin,
		p.SkinBounds.HMax, p.SkinBounds.SMax, p.SkinBounds.VMax,
		p.MinContourArea, p.Cooldown.Milliseconds(), p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Activate marks one profile as active and deactivates the rest.
func (r *ProfileRepository) Activate(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE profiles SET active = 0 WHERE active = 1`); err != nil {
		return err
	}

	result, err := tx.Exec(`UPDATE profiles SET active = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a profile from the database by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
