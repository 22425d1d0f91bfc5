package hate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hatelist/internal/model"
)

func TestDump(t *testing.T) {
	z := newTestZone(t)
	_, list := z.newOwner()
	a := z.spawn("Alice", model.KindPlayer, 0, 0)
	b := z.spawn("Bob", model.KindPlayer, 0, 0)
	list.AddOrUpdate(a, 40, 12, false, true)
	list.AddOrUpdate(b, 7, 0, true, true)
	z.despawn(b)

	rows := list.Dump()
	require.Len(t, rows, 2)
	assert.Equal(t, DumpRow{Name: "Alice", ID: a.Handle().ID(), Damage: 12, Hate: 40}, rows[0])
	assert.Equal(t, DumpRow{ID: b.Handle().ID(), Hate: 7, Frenzied: true}, rows[1])

	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, "a_gnoll", rows))
	assert.Equal(t,
		"Displaying hate list for a_gnoll.\n"+
			"Hate Entity 1 | Name: Alice (2) Damage: 12 Hate: 40\n"+
			"Hate Entity 2 | Damage: 0 Hate: 7\n",
		buf.String())
}

func TestWriteDump_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, "a_gnoll", nil))
	assert.Equal(t, "a_gnoll has nothing on its hatelist.\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteDump_PropagatesError(t *testing.T) {
	err := WriteDump(failingWriter{}, "a_gnoll", []DumpRow{{Name: "x"}})
	assert.EqualError(t, err, "closed")
}
