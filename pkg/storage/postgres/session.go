package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/model"
	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/storage"
)

func newSessionStore(db *sqlx.DB) *sessionStore {
	return &sessionStore{
		db: db,
	}
}

type sessionStore struct {
	db *sqlx.DB
}

type sqlDataSession struct {
	ID          string    `db:"id"`
	BusNumber   string    `db:"bus_number"`
	TrackerID   string    `db:"tracker_id"`
	Latitude    float64   `db:"latitude"`
	Longitude   float64   `db:"longitude"`
	Accuracy    float64   `db:"accuracy"`
	LastUpdated time.Time `db:"last_updated"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}

var sqlParamsSession = []string{
	"id",
	"bus_number",
	"tracker_id",
	"latitude",
	"longitude",
	"accuracy",
	"last_updated",
	"expires_at",
	"created_at",
}

func (d *sqlDataSession) Scan(m *model.Session) error {
	var createdAt = m.CreatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.BusNumber = m.BusNumber
	d.TrackerID = m.TrackerID
	d.Latitude = m.Latitude
	d.Longitude = m.Longitude
	d.Accuracy = m.Accuracy
	d.LastUpdated = m.LastUpdated
	d.ExpiresAt = m.ExpiresAt
	d.CreatedAt = createdAt

	return nil
}

func (d *sqlDataSession) Model() (*model.Session, error) {
	m := &model.Session{
		ID:          d.ID,
		BusNumber:   d.BusNumber,
		TrackerID:   d.TrackerID,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Accuracy:    d.Accuracy,
		LastUpdated: d.LastUpdated,
		ExpiresAt:   d.ExpiresAt,
		CreatedAt:   d.CreatedAt,
	}

	return m, nil
}

func (s *sessionStore) FetchAll() (map[string]model.Session, error) {
	return fetchAllSessions(s.db)
}

func (s *sessionStore) FindByID(id string) (*model.Session, error) {
	return findSessionByID(s.db, id)
}

func (s *sessionStore) FindActiveByBus(busNumber string) (*model.Session, error) {
	return findSessionByBus(s.db, busNumber)
}

func (s *sessionStore) Create(m *model.Session) error {
	return createSession(s.db, m)
}

func (s *sessionStore) UpdateLocation(id string, lat, lng, accuracy float64, now time.Time) error {
	return updateSessionLocation(s.db, id, lat, lng, accuracy, now)
}

func (s *sessionStore) Delete(id string) (*model.Session, error) {
	return deleteSession(s.db, id)
}

func (s *sessionStore) DeleteStale(busNumber string, olderThan time.Time) (int64, error) {
	return deleteStaleSessions(s.db, busNumber, olderThan)
}

func (s *sessionStore) DeleteExpired(now time.Time) (int64, error) {
	return deleteExpiredSessions(s.db, now)
}

func fetchAllSessions(db *sqlx.DB) (map[string]model.Session, error) {
	rows := make([]sqlDataSession, 0)
	models := make(map[string]model.Session)

	query := "SELECT * FROM sessions"
	if err := db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all sessions")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to session model")
		}

		models[d.ID] = *m
	}

	return models, nil
}

func findSessionByID(db *sqlx.DB, id string) (*model.Session, error) {
	d := sqlDataSession{}
	query := "SELECT * FROM sessions WHERE id=$1"
	if err := db.Get(&d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find session")
	}

	return d.Model()
}

func findSessionByBus(db *sqlx.DB, busNumber string) (*model.Session, error) {
	d := sqlDataSession{}
	query := "SELECT * FROM sessions WHERE bus_number=$1"
	if err := db.Get(&d, query, busNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find session")
	}

	return d.Model()
}

// createSession relies on the unique index on bus_number: the insert is the
// atomic check-and-create, a concurrent duplicate claim surfaces as a
// unique_violation which is mapped to storage.ErrConflict.
func createSession(db *sqlx.DB, m *model.Session) error {
	d := sqlDataSession{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert session model to SQL data")
	}

	query := fmt.Sprintf(
		"INSERT INTO sessions (%s) VALUES (%s)",
		strings.Join(sqlParamsSession, ", "),
		":"+strings.Join(sqlParamsSession, ", :"),
	)
	if _, err := db.NamedExec(query, d); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return storage.ErrConflict
		}
		return errors.Wrap(err, "failed to create session")
	}
	m.CreatedAt = d.CreatedAt

	return nil
}

func updateSessionLocation(db *sqlx.DB, id string, lat, lng, accuracy float64, now time.Time) error {
	query := "UPDATE sessions SET latitude=$2, longitude=$3, accuracy=$4, last_updated=$5 WHERE id=$1"
	res, err := db.Exec(query, id, lat, lng, accuracy, now)
	if err != nil {
		return errors.Wrap(err, "failed to update session location")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func deleteSession(db *sqlx.DB, id string) (*model.Session, error) {
	d := sqlDataSession{}
	query := "DELETE FROM sessions WHERE id=$1 RETURNING *"
	if err := db.Get(&d, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to delete session")
	}

	return d.Model()
}

func deleteStaleSessions(db *sqlx.DB, busNumber string, olderThan time.Time) (int64, error) {
	query := "DELETE FROM sessions WHERE bus_number=$1 AND last_updated < $2"
	res, err := db.Exec(query, busNumber, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete stale sessions")
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}

	return count, nil
}

func deleteExpiredSessions(db *sqlx.DB, now time.Time) (int64, error) {
	query := "DELETE FROM sessions WHERE expires_at <= $1"
	res, err := db.Exec(query, now)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired sessions")
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read affected rows")
	}

	return count, nil
}
