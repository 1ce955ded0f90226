package inmemory

import (
	"context"
	"sort"

	"kanbanTracker/internal/models/task"
	"kanbanTracker/internal/models/timelog"
)

func (s *Storage) LogTime(ctx context.Context, t *task.Task, entry *timelog.TimeLog) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.updateLocked(t); err != nil {
		return err
	}

	entry.ID = s.nextID()
	entry.TaskID = t.ID
	entry.CreatedAt = stamp(entry.CreatedAt)
	stored := *entry
	s.logs[stored.ID] = &stored
	s.logIDs = append(s.logIDs, stored.ID)
	s.fillLog(entry)
	return nil
}

func (s *Storage) ListTimeLogs(ctx context.Context, filter timelog.Filter) ([]*timelog.TimeLog, int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*timelog.TimeLog{}
	for _, id := range s.logIDs {
		l := s.logs[id]
		if l.TaskID != filter.TaskID {
			continue
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.LoggedByID != nil && l.LoggedByID != *filter.LoggedByID {
			continue
		}
		if filter.From != nil && l.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.CreatedAt.After(*filter.To) {
			continue
		}
		view := *l
		s.fillLog(&view)
		matched = append(matched, &view)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			if filter.Ascending {
				return a.ID < b.ID
			}
			return a.ID > b.ID
		}
		if filter.Ascending {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := len(matched)
	offset := filter.Offset()
	if offset >= total {
		return []*timelog.TimeLog{}, total, nil
	}
	end := total
	if filter.PerPage > 0 && offset+filter.PerPage < end {
		end = offset + filter.PerPage
	}
	return matched[offset:end], total, nil
}

func (s *Storage) TimeSummary(ctx context.Context, filter timelog.SummaryFilter) ([]timelog.SummaryRow, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var scope map[int64]struct{}
	if filter.ColumnIDs != nil {
		scope = make(map[int64]struct{}, len(filter.ColumnIDs))
		for _, id := range filter.ColumnIDs {
			scope[id] = struct{}{}
		}
	}

	rows := make(map[int64]*timelog.SummaryRow)
	for _, id := range s.logIDs {
		l := s.logs[id]
		if scope != nil {
			t, ok := s.tasks[l.TaskID]
			if !ok {
				continue
			}
			if _, ok := scope[t.ColumnID]; !ok {
				continue
			}
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && l.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.CreatedAt.After(*filter.To) {
			continue
		}

		row, ok := rows[l.UserID]
		if !ok {
			row = &timelog.SummaryRow{UserID: l.UserID}
			if u, ok := s.users[l.UserID]; ok {
				row.Username = u.Username
			}
			rows[l.UserID] = row
		}
		row.TotalSpentHours += l.SpentHours
		row.LogCount++
	}

	res := make([]timelog.SummaryRow, 0, len(rows))
	for _, row := range rows {
		res = append(res, *row)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TotalSpentHours == res[j].TotalSpentHours {
			return res[i].UserID < res[j].UserID
		}
		return res[i].TotalSpentHours > res[j].TotalSpentHours
	})
	return res, nil
}

func (s *Storage) fillLog(l *timelog.TimeLog) {
	if u, ok := s.users[l.UserID]; ok {
		l.Username = u.Username
	}
	if u, ok := s.users[l.LoggedByID]; ok {
		l.LoggedBy = u.Username
	}
}
