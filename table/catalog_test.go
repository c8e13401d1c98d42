package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleColumn(t *testing.T, v int64) *Table {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.AddColumn("v", TypeInteger))
	require.NoError(t, b.AppendRow(v))
	return b.Build()
}

func TestCatalog_CreateGet(t *testing.T) {
	c := NewCatalog()
	tbl := singleColumn(t, 1)

	require.NoError(t, c.Create("donations", tbl))

	got, err := c.Get("donations")
	require.NoError(t, err)
	assert.Same(t, tbl, got)
}

func TestCatalog_CreateDuplicate(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Create("t", singleColumn(t, 1)))

	err := c.Create("t", singleColumn(t, 2))
	var dup *DuplicateTableError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "t", dup.Name)
}

func TestCatalog_GetMissing(t *testing.T) {
	c := NewCatalog()

	_, err := c.Get("nope")
	var nf *TableNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Name)
}

func TestCatalog_Replace(t *testing.T) {
	c := NewCatalog()
	c.Replace("t", singleColumn(t, 1))

	second := singleColumn(t, 2)
	c.Replace("t", second)

	got, err := c.Get("t")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestCatalog_Drop(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Create("t", singleColumn(t, 1)))
	require.NoError(t, c.Drop("t"))

	var nf *TableNotFoundError
	require.ErrorAs(t, c.Drop("t"), &nf)
}

func TestCatalog_Names(t *testing.T) {
	c := NewCatalog()
	c.Replace("b", singleColumn(t, 1))
	c.Replace("a", singleColumn(t, 2))

	assert.Equal(t, []string{"a", "b"}, c.Names())
}

func TestCatalog_ConcurrentReaders(t *testing.T) {
	c := NewCatalog()
	c.Replace("t", singleColumn(t, 1))

	replacement := singleColumn(t, 2)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := c.Get("t"); err != nil {
					t.Error(err)
					return
				}
				c.Replace("t", replacement)
			}
		}()
	}
	wg.Wait()
}
