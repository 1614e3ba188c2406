package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Project is the durable record of a completed generation job.
type Project struct {
	JobID       string
	UserID      string
	Name        string
	Description string
	VideoURL    string
	Script      string
	Style       string
	Keywords    []string
	CreatedAt   time.Time
}

// ProjectDB persists completed projects to SQLite.
type ProjectDB struct {
	db *sql.DB
}

// NewProjectDB opens (and migrates) the project database.
func NewProjectDB(dbPath string) (*ProjectDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		video_url TEXT,
		script TEXT,
		style TEXT,
		keywords TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
	CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &ProjectDB{db: db}, nil
}

// SaveProject inserts one completed project record.
func (pdb *ProjectDB) SaveProject(p Project) error {
	query := `
	INSERT INTO projects (job_id, user_id, name, description, video_url, script, style, keywords, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := pdb.db.Exec(query, p.JobID, p.UserID, p.Name, p.Description,
		p.VideoURL, p.Script, p.Style, strings.Join(p.Keywords, ","), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save project: %v", err)
	}
	return nil
}

// ListProjects returns a user's most recent projects.
func (pdb *ProjectDB) ListProjects(userID string, limit int) ([]Project, error) {
	query := `
	SELECT job_id, user_id, name, description, video_url, script, style, keywords, created_at
	FROM projects WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`

	rows, err := pdb.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var keywords string
		if err := rows.Scan(&p.JobID, &p.UserID, &p.Name, &p.Description,
			&p.VideoURL, &p.Script, &p.Style, &keywords, &p.CreatedAt); err != nil {
			continue
		}
		if keywords != "" {
			p.Keywords = strings.Split(keywords, ",")
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Close closes the database connection.
func (pdb *ProjectDB) Close() error {
	return pdb.db.Close()
}
