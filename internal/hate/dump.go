package hate

import (
	"fmt"
	"io"
)

// DumpRow is one line of the administrative hate list listing.
type DumpRow struct {
	Name     string // empty when the attacker no longer resolves
	ID       uint32
	Damage   uint64
	Hate     int64
	Frenzied bool
}

// Dump returns the list contents in list order.
func (l *List) Dump() []DumpRow {
	rows := make([]DumpRow, 0, len(l.index))
	for i := range l.entries {
		e := &l.entries[i]
		if !e.live {
			continue
		}
		row := DumpRow{
			ID:       e.attacker.ID(),
			Damage:   e.damage,
			Hate:     e.hate,
			Frenzied: e.frenzied,
		}
		if m, ok := l.env.resolve(e.attacker); ok {
			row.Name = m.Name()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteDump writes rows in the GM listing format.
func WriteDump(w io.Writer, owner string, rows []DumpRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s has nothing on its hatelist.\n", owner)
		return err
	}

	if _, err := fmt.Fprintf(w, "Displaying hate list for %s.\n", owner); err != nil {
		return err
	}
	for i, r := range rows {
		var err error
		if r.Name != "" {
			_, err = fmt.Fprintf(w, "Hate Entity %d | Name: %s (%d) Damage: %d Hate: %d\n",
				i+1, r.Name, r.ID, r.Damage, r.Hate)
		} else {
			_, err = fmt.Fprintf(w, "Hate Entity %d | Damage: %d Hate: %d\n",
				i+1, r.Damage, r.Hate)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
