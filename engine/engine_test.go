package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/csvql/ingest"
	"github.com/vegasq/csvql/output"
	"github.com/vegasq/csvql/table"
)

const pokemonCSV = "id,name\n1,Bulbasaur\n2,Ivysaur\n"

const donationsJSON = `[
	{"pokemon_id": 1, "amt": 500},
	{"pokemon_id": 2, "amt": 1500}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDatabase_LoadCSVAndFilter(t *testing.T) {
	db := New()
	path := writeFile(t, "pokemon.csv", pokemonCSV)

	require.NoError(t, db.LoadCSV("pokemon", path, ingest.CSVOptions{Header: true, Delimiter: ','}))

	result, err := db.Execute("select id, name from pokemon where id > 1")
	require.NoError(t, err)
	require.Equal(t, 1, result.NumRows())
	assert.Equal(t, int64(2), result.Value(0, 0))
	assert.Equal(t, "Ivysaur", result.Value(1, 0))
}

func TestDatabase_LoadJSONAndFilter(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadJSONRecords("donations", []byte(donationsJSON)))

	result, err := db.Execute("select pokemon_id, amt from donations where amt > 1000")
	require.NoError(t, err)
	require.Equal(t, 1, result.NumRows())
	assert.Equal(t, int64(2), result.Value(0, 0))
	assert.Equal(t, int64(1500), result.Value(1, 0))
}

func TestDatabase_JoinAcrossSources(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadCSV("masterdata",
		writeFile(t, "masterdata.csv", "pokemon_identifier,name\n1,Bulbasaur\n2,Ivysaur\n"),
		ingest.CSVOptions{Header: true, Delimiter: ','}))
	require.NoError(t, db.LoadJSONRecords("donations", []byte(donationsJSON)))

	result, err := db.Execute(
		"select d.amt, m.name from donations d join masterdata m on pokemon_id = pokemon_identifier")
	require.NoError(t, err)
	require.Equal(t, 2, result.NumRows())
	assert.Equal(t, int64(500), result.Value(0, 0))
	assert.Equal(t, "Bulbasaur", result.Value(1, 0))
	assert.Equal(t, int64(1500), result.Value(0, 1))
	assert.Equal(t, "Ivysaur", result.Value(1, 1))
}

func TestDatabase_ExportReloadIdempotent(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadCSV("pokemon",
		writeFile(t, "pokemon.csv", pokemonCSV),
		ingest.CSVOptions{Header: true, Delimiter: ','}))

	exported := filepath.Join(t.TempDir(), "exported.csv")
	require.NoError(t, db.ExportCSV("pokemon", exported, output.CSVOptions{Header: true, Delimiter: ','}))
	require.NoError(t, db.LoadCSV("reloaded", exported, ingest.CSVOptions{Header: true, Delimiter: ','}))

	original, err := db.Catalog().Get("pokemon")
	require.NoError(t, err)
	reloaded, err := db.Catalog().Get("reloaded")
	require.NoError(t, err)
	assert.True(t, reloaded.Equal(original))
}

func TestDatabase_ExportReloadIdempotentFloats(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadCSV("metrics",
		writeFile(t, "metrics.csv", "ratio\n1.0\n2.0\n0.5\n"),
		ingest.CSVOptions{Header: true, Delimiter: ','}))

	exported := filepath.Join(t.TempDir(), "metrics-out.csv")
	require.NoError(t, db.ExportCSV("metrics", exported, output.CSVOptions{Header: true, Delimiter: ','}))
	require.NoError(t, db.LoadCSV("reloaded", exported, ingest.CSVOptions{Header: true, Delimiter: ','}))

	original, err := db.Catalog().Get("metrics")
	require.NoError(t, err)
	reloaded, err := db.Catalog().Get("reloaded")
	require.NoError(t, err)
	require.Equal(t, table.TypeFloat, reloaded.Column(0).Type)
	assert.True(t, reloaded.Equal(original))
}

func TestDatabase_DDLReturnsNilTable(t *testing.T) {
	db := New()

	result, err := db.Execute("create table scores (id integer, value float)")
	require.NoError(t, err)
	assert.Nil(t, result)

	tbl, err := db.Catalog().Get("scores")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
}

func TestDatabase_CreateTableAsThenQuery(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadJSONRecords("donations", []byte(donationsJSON)))

	_, err := db.Execute("create table big as select * from donations where amt > 1000")
	require.NoError(t, err)

	result, err := db.Execute("select count(*) from big")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Value(0, 0))
}

func TestDatabase_CopyStatements(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadJSONRecords("donations", []byte(donationsJSON)))

	path := filepath.Join(t.TempDir(), "donations.csv")
	_, err := db.Execute("copy donations to '" + path + "'")
	require.NoError(t, err)

	_, err = db.Execute("copy reloaded from '" + path + "'")
	require.NoError(t, err)

	result, err := db.Execute("select sum(amt) from reloaded")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.Value(0, 0))
}

func TestDatabase_ErrorsSurface(t *testing.T) {
	db := New()

	_, err := db.Execute("select * from nothere")
	var notFound *table.TableNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = db.Execute("insert into t values (1)")
	assert.Error(t, err)
}

func TestDatabase_ConcurrentQueriesAndLoads(t *testing.T) {
	db := New()
	require.NoError(t, db.LoadCSV("pokemon",
		writeFile(t, "pokemon.csv", pokemonCSV),
		ingest.CSVOptions{Header: true, Delimiter: ','}))

	replacementPath := writeFile(t, "more.csv", "id,name\n1,Bulbasaur\n2,Ivysaur\n3,Venusaur\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result, err := db.Execute("select count(*) from pokemon")
				if err != nil {
					t.Error(err)
					return
				}
				// Readers see either the old or the new table, never a mix.
				n := result.Value(0, 0)
				if n != int64(2) && n != int64(3) {
					t.Errorf("count = %v, want 2 or 3", n)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := db.LoadCSV("pokemon", replacementPath, ingest.CSVOptions{Header: true, Delimiter: ','}); err != nil {
			t.Error(err)
		}
	}()

	wg.Wait()
}
