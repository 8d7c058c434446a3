package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/ptr"
)

// Операции над группами отчетов. Каждая возвращает новый набор групп и
// события истории; исходный срез не меняется.

func cloneGroups(groups []domain.ReportGroup) []domain.ReportGroup {
	out := make([]domain.ReportGroup, len(groups))
	for i, g := range groups {
		out[i] = domain.ReportGroup{Name: g.Name, Files: append([]string(nil), g.Files...)}
	}
	return out
}

func findGroup(groups []domain.ReportGroup, name string) int {
	for i, g := range groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

func addReport(groups []domain.ReportGroup, groupName, url string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil, fmt.Errorf("%w: reportUrl is required", ErrInvalidInput)
	}

	groupName = strings.TrimSpace(groupName)
	if groupName == "" {
		groupName = domain.DefaultReportGroup
	}

	return saveGroup(groups, groupName, []string{url}, now)
}

func removeReport(groups []domain.ReportGroup, url string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil, fmt.Errorf("%w: reportUrl is required", ErrInvalidInput)
	}

	out := cloneGroups(groups)
	var events []domain.ReportEvent

	for i := range out {
		kept := out[i].Files[:0]
		for _, f := range out[i].Files {
			if f != url {
				kept = append(kept, f)
				continue
			}
			events = append(events, domain.ReportEvent{
				Name:      ptr.Ptr(out[i].Name),
				Action:    domain.ReportRemoved,
				ReportURL: ptr.Ptr(url),
				UpdatedAt: now,
			})
		}
		out[i].Files = kept
	}

	if len(events) == 0 {
		return nil, nil, ErrReportNotFound
	}

	return out, events, nil
}

func saveGroup(groups []domain.ReportGroup, name string, files []string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateReportGroupName(name); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := domain.ValidateReportFiles(files); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	out := cloneGroups(groups)
	idx := findGroup(out, name)
	if idx < 0 {
		out = append(out, domain.ReportGroup{Name: name})
		idx = len(out) - 1
	}

	if len(out[idx].Files)+len(files) > domain.MaxReportFilesPerGroup {
		return nil, nil, fmt.Errorf("%w: group %q would exceed %d files", ErrInvalidInput, name, domain.MaxReportFilesPerGroup)
	}

	events := make([]domain.ReportEvent, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		out[idx].Files = append(out[idx].Files, f)
		events = append(events, domain.ReportEvent{
			Name:      ptr.Ptr(name),
			Action:    domain.ReportAdded,
			ReportURL: ptr.Ptr(f),
			UpdatedAt: now,
		})
	}

	return out, events, nil
}

func renameGroup(groups []domain.ReportGroup, oldName, newName string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	newName = strings.TrimSpace(newName)
	if err := domain.ValidateReportGroupName(newName); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	out := cloneGroups(groups)
	idx := findGroup(out, oldName)
	if idx < 0 {
		return nil, nil, ErrReportGroupNotFound
	}
	if newName == oldName {
		return nil, nil, fmt.Errorf("%w: new name equals the current one", ErrInvalidInput)
	}
	if findGroup(out, newName) >= 0 {
		return nil, nil, ErrReportGroupExists
	}

	out[idx].Name = newName

	events := []domain.ReportEvent{
		{Name: ptr.Ptr(oldName), Action: domain.ReportRemoved, UpdatedAt: now},
		{Name: ptr.Ptr(newName), Action: domain.ReportAdded, UpdatedAt: now},
	}

	return out, events, nil
}

func deleteGroup(groups []domain.ReportGroup, name string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	idx := findGroup(groups, name)
	if idx < 0 {
		return nil, nil, ErrReportGroupNotFound
	}

	out := cloneGroups(groups)
	out = append(out[:idx], out[idx+1:]...)

	events := []domain.ReportEvent{{Name: ptr.Ptr(name), Action: domain.ReportRemoved, UpdatedAt: now}}

	return out, events, nil
}

func removeFile(groups []domain.ReportGroup, name, url string, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil, fmt.Errorf("%w: fileUrl is required", ErrInvalidInput)
	}

	out := cloneGroups(groups)
	idx := findGroup(out, name)
	if idx < 0 {
		return nil, nil, ErrReportGroupNotFound
	}

	// каждое удаленное вхождение получает свое событие, как в removeReport
	var events []domain.ReportEvent
	kept := out[idx].Files[:0]
	for _, f := range out[idx].Files {
		if f != url {
			kept = append(kept, f)
			continue
		}
		events = append(events, domain.ReportEvent{Name: ptr.Ptr(name), Action: domain.ReportRemoved, ReportURL: ptr.Ptr(url), UpdatedAt: now})
	}
	if len(events) == 0 {
		return nil, nil, ErrReportNotFound
	}
	out[idx].Files = kept

	return out, events, nil
}
