package recipient

import (
	"bytes"
	"strings"
	"testing"

	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	in := "\ufeffName,Email,Company\nAlice,alice@x.com,Acme\n\n,,\nBob,bob@x.com\n"

	set, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Company"}, set.Columns())
	require.Equal(t, 2, set.Len())

	alice := set.Row(0)
	assert.Equal(t, "Alice", alice.Get("Name"))
	assert.Equal(t, "Acme", alice.Get("Company"))

	bob := set.Row(1)
	v, ok := bob.Lookup("Company")
	assert.True(t, ok)
	assert.Empty(t, v)
	_, ok = bob.Lookup("Phone")
	assert.False(t, ok)
}

func TestParse_KeepsCellWhitespace(t *testing.T) {
	set, err := Parse(strings.NewReader(" Name , Email,Note\nAlice, alice@x.com,  two spaces\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Email", "Note"}, set.Columns())
	row := set.Row(0)
	assert.Equal(t, "  two spaces", row.Get("Note"))
	assert.Equal(t, " alice@x.com", row.Get("Email"))
}

func TestRow_ColumnsIsCopy(t *testing.T) {
	set := NewSet([]string{"Name", "Email"}, [][]string{{"Alice", "a@x.com"}, {"Bob", "b@x.com"}})

	cols := set.Row(0).Columns()
	cols[0] = "Broken"
	_ = append(cols, "Extra")

	assert.Equal(t, []string{"Name", "Email"}, set.Row(1).Columns())
	assert.Equal(t, "Bob", set.Row(1).Get("Name"))
}

func TestParse_NoData(t *testing.T) {
	for _, in := range []string{"", "Name,Email\n", "Name,Email\n\n\n"} {
		_, err := Parse(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrNoData, "input %q", in)
	}
}

func TestSet_EmailColumn(t *testing.T) {
	set := NewSet([]string{"Name", "EMAIL"}, [][]string{{"A", "a@x.com"}})
	col, err := set.EmailColumn()
	require.NoError(t, err)
	assert.Equal(t, "EMAIL", col)

	set = NewSet([]string{"Name", "Mail"}, [][]string{{"A", "a@x.com"}})
	_, err = set.EmailColumn()
	assert.ErrorIs(t, err, ErrNoEmailColumn)
}

func TestRow_Substitute(t *testing.T) {
	set := NewSet([]string{"Name", "Email"}, [][]string{{"Alice", "alice@x.com"}})
	var row compose.Row = set.Row(0)
	assert.Equal(t, "Hi Alice <alice@x.com>", compose.Substitute("Hi {Name} <{Email}>", row))
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	assert.Equal(t, "Name,Email\nJohn Doe,john.doe@kiit.ac.in", buf.String())

	set, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, map[string]string{"Name": "John Doe", "Email": "john.doe@kiit.ac.in"}, set.Row(0).Map())
}
