package board

import (
	"strings"
	"time"
)

type Project struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Board struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ProjectID int64     `json:"project_id" db:"project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Column struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Order     int        `json:"order" db:"position"`
	BoardID   int64      `json:"board_id" db:"board_id"`
	Role      ColumnRole `json:"role" db:"role"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ColumnRole - семантическая метка колонки, не зависящая от отображаемого имени.
type ColumnRole string

const (
	RoleNone       ColumnRole = "none"
	RoleEntry      ColumnRole = "entry"
	RoleInProgress ColumnRole = "in_progress"
	RoleDone       ColumnRole = "done"
)

func (r ColumnRole) Valid() bool {
	switch r {
	case RoleNone, RoleEntry, RoleInProgress, RoleDone:
		return true
	}
	return false
}

var legacyRoles = map[string]ColumnRole{
	"backlog":       RoleEntry,
	"беклог":        RoleEntry,
	"in progress":   RoleInProgress,
	"в работе":      RoleInProgress,
	"in production": RoleDone,
	"в продакшен":   RoleDone,
}

// RoleForName возвращает метку по старому соглашению об именах колонок.
func RoleForName(name string) ColumnRole {
	if role, ok := legacyRoles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return role
	}
	return RoleNone
}

// DefaultColumns - семь колонок, которые получает каждая новая доска.
func DefaultColumns() []Column {
	names := []string{"Backlog", "Reopened", "In Progress", "Deploy/Review", "Test", "Verified", "In Production"}
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Order: i + 1, Role: RoleForName(name)}
	}
	return columns
}

// EntryColumn выбирает колонку для новых задач: помеченную как entry,
// иначе колонку с наименьшим порядком.
func EntryColumn(columns []Column) (Column, bool) {
	if len(columns) == 0 {
		return Column{}, false
	}
	first := columns[0]
	for _, c := range columns {
		if c.Role == RoleEntry {
			return c, true
		}
		if c.Order < first.Order {
			first = c
		}
	}
	return first, true
}
