package interfaces

import "time"

// SprintStore persists sprint detail between runs.
type SprintStore interface {
	// LoadSprint returns nil without error when the sprint is not stored.
	LoadSprint(sprintID string) (*SprintData, error)
	SaveSprint(sprint *SprintData) error
	ClearSprints() error
	Count() (int, error)
	// LastSaved is the time of the most recent save, zero when nothing is stored.
	LastSaved() (time.Time, error)
	Close() error
}
