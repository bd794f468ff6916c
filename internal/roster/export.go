package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BST1120/mapper2/internal/domain"
	"github.com/BST1120/mapper2/internal/store"
)

// Exporter renders a month of shift documents back into an xlsx grid that the
// importer accepts: one row per active staff, one date column per day.
type Exporter struct {
	Store store.Store
}

func NewExporter(st store.Store) *Exporter {
	return &Exporter{Store: st}
}

// Export builds the workbook for one "YYYY-MM" month. Cells carry the shift
// code, the raw time range for fixed shifts, and 休 for absences.
func (e *Exporter) Export(ctx context.Context, tenantID, month string, loc *time.Location) ([]byte, error) {
	hm := monthHintForm.FindStringSubmatch(month)
	if hm == nil {
		return nil, errors.New("month must be YYYY-MM")
	}
	year, _ := strconv.Atoi(hm[1])
	mo, _ := strconv.Atoi(hm[2])
	if mo < 1 || mo > 12 {
		return nil, errors.New("month must be YYYY-MM")
	}
	if loc == nil {
		loc = time.Local
	}
	days := time.Date(year, time.Month(mo)+1, 0, 0, 0, 0, 0, loc).Day()

	staff, err := e.activeStaff(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setCell(f, sheet, 1, 1, "氏名"); err != nil {
		return nil, err
	}
	for day := 1; day <= days; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, mo, day)
		if err := setCell(f, sheet, 1, 1+day, date); err != nil {
			return nil, err
		}

		shifts, err := e.shiftsFor(ctx, tenantID, date)
		if err != nil {
			return nil, err
		}
		for i, s := range staff {
			sh, ok := shifts[s.id]
			if !ok {
				continue
			}
			if err := setCell(f, sheet, 2+i, 1+day, cellFor(sh, loc)); err != nil {
				return nil, err
			}
		}
	}
	for i, s := range staff {
		if err := setCell(f, sheet, 2+i, 1, s.name); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type staffRow struct {
	id   string
	name string
}

func (e *Exporter) activeStaff(ctx context.Context, tenantID string) ([]staffRow, error) {
	snaps, err := e.Store.GetAll(ctx, store.StaffCollection(tenantID))
	if err != nil {
		return nil, fmt.Errorf("read staff: %w", err)
	}
	rows := []staffRow{}
	for _, snap := range snaps {
		var s domain.Staff
		if err := store.DataTo(snap.Data, &s); err != nil {
			return nil, err
		}
		if !s.Active {
			continue
		}
		rows = append(rows, staffRow{id: snap.ID, name: s.LastName + s.FirstName})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].name != rows[j].name {
			return rows[i].name < rows[j].name
		}
		return rows[i].id < rows[j].id
	})
	return rows, nil
}

func (e *Exporter) shiftsFor(ctx context.Context, tenantID, date string) (map[string]domain.Shift, error) {
	snaps, err := e.Store.GetAll(ctx, store.ShiftsCollection(tenantID, date))
	if err != nil {
		return nil, fmt.Errorf("read shifts %s: %w", date, err)
	}
	out := make(map[string]domain.Shift, len(snaps))
	for _, snap := range snaps {
		var sh domain.Shift
		if err := store.DataTo(snap.Data, &sh); err != nil {
			return nil, err
		}
		out[snap.ID] = sh
	}
	return out, nil
}

func cellFor(sh domain.Shift, loc *time.Location) string {
	if sh.Absent {
		return "休"
	}
	if sh.ShiftCode != "" && sh.ShiftCode != "fixed" {
		return sh.ShiftCode
	}
	return sh.StartAt.In(loc).Format("15:04") + "-" + sh.EndAt.In(loc).Format("15:04")
}

func setCell(f *excelize.File, sheet string, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
