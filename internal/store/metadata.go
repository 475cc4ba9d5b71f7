package store

import "database/sql"

// SetMetadata upserts a key-value pair in the app_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GetCriteriaFileHash returns the recorded content hash for a previously
// loaded criteria template file.
func (s *Store) GetCriteriaFileHash(path string) (string, error) {
	return s.GetMetadata("criteria:" + path)
}

// SetCriteriaFileHash records the content hash of a loaded criteria
// template file.
func (s *Store) SetCriteriaFileHash(path, hash string) error {
	return s.SetMetadata("criteria:"+path, hash)
}
