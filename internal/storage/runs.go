package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/fleetwatch/internal/model"
)

// RunStorage handles run history persistence.
type RunStorage struct {
	db *DB
}

// NewRunStorage creates a new run storage handler.
func NewRunStorage(db *DB) *RunStorage {
	return &RunStorage{db: db}
}

// SaveRun stores the statistics of one completed pipeline run.
func (s *RunStorage) SaveRun(run *model.RunRecord) error {
	query := `INSERT INTO runs (timestamp, total_devices, cas_activated,
				devices_in_sa, devices_not_in_sa, devices_online,
				connected_last_24h, new_connected_last_24h,
				new_connected_last_7_days, new_connected_since_first_of_month)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	st := run.Stats
	result, err := s.db.Exec(query,
		run.Timestamp, st.TotalDevices, st.CASActivated,
		st.DevicesInSA, st.DevicesNotInSA, st.DevicesOnline,
		st.ConnectedLast24h, st.NewConnectedLast24h,
		st.NewConnectedLast7Days, st.NewConnectedSinceFirstOfMonth)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	run.ID = id

	for retailer, counts := range st.Retailers {
		_, err := s.db.Exec(
			`INSERT INTO run_retailers (run_id, retailer, total, activated, in_sa)
			 VALUES (?, ?, ?, ?, ?)`,
			id, retailer, counts.Total, counts.Activated, counts.InSA)
		if err != nil {
			return fmt.Errorf("failed to insert retailer counts: %w", err)
		}
	}

	return nil
}

// Latest returns the most recent run, or nil when none exists.
func (s *RunStorage) Latest() (*model.RunRecord, error) {
	query := `SELECT id, timestamp, total_devices, cas_activated,
				devices_in_sa, devices_not_in_sa, devices_online,
				connected_last_24h, new_connected_last_24h,
				new_connected_last_7_days, new_connected_since_first_of_month
			  FROM runs ORDER BY timestamp DESC, id DESC LIMIT 1`

	run, err := s.scanRun(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	if err := s.loadRetailers(run); err != nil {
		return nil, err
	}

	return run, nil
}

// History returns runs since a given time, most recent first.
// Retailer breakdowns are not attached.
func (s *RunStorage) History(since time.Time) ([]model.RunRecord, error) {
	query := `SELECT id, timestamp, total_devices, cas_activated,
				devices_in_sa, devices_not_in_sa, devices_online,
				connected_last_24h, new_connected_last_24h,
				new_connected_last_7_days, new_connected_since_first_of_month
			  FROM runs WHERE timestamp >= ? ORDER BY timestamp DESC`

	rows, err := s.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Count returns the total number of recorded runs.
func (s *RunStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *RunStorage) scanRun(row rowScanner) (*model.RunRecord, error) {
	var run model.RunRecord
	st := &run.Stats
	err := row.Scan(
		&run.ID, &run.Timestamp, &st.TotalDevices, &st.CASActivated,
		&st.DevicesInSA, &st.DevicesNotInSA, &st.DevicesOnline,
		&st.ConnectedLast24h, &st.NewConnectedLast24h,
		&st.NewConnectedLast7Days, &st.NewConnectedSinceFirstOfMonth)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RunStorage) loadRetailers(run *model.RunRecord) error {
	rows, err := s.db.Query(
		`SELECT retailer, total, activated, in_sa
		 FROM run_retailers WHERE run_id = ? ORDER BY total DESC, retailer`,
		run.ID)
	if err != nil {
		return fmt.Errorf("failed to query retailer counts: %w", err)
	}
	defer rows.Close()

	run.Stats.Retailers = make(map[string]*model.RetailerCounts)
	for rows.Next() {
		var retailer string
		var counts model.RetailerCounts
		if err := rows.Scan(&retailer, &counts.Total, &counts.Activated, &counts.InSA); err != nil {
			return fmt.Errorf("failed to scan retailer counts: %w", err)
		}
		run.Stats.Retailers[retailer] = &counts
	}

	return rows.Err()
}
