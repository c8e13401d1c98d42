// Command csvql is an interactive SQL shell over CSV, JSON and parquet
// files. Files load into named in-memory tables that restricted SQL
// statements can filter, join, aggregate and export.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vegasq/csvql/engine"
	"github.com/vegasq/csvql/ingest"
	"github.com/vegasq/csvql/output"
	"github.com/vegasq/csvql/table"
)

var (
	queryFlag  = flag.String("q", "", "SQL statement to execute and exit (e.g., \"select * from data where age > 30\")")
	formatFlag = flag.String("f", "table", "Output format: table, csv, jsonl")
	configFlag = flag.String("config", "", "Path to a YAML config file")
	debugFlag  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [name=file ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An interactive SQL shell over CSV, JSON and parquet files.\n\n")
		fmt.Fprintf(os.Stderr, "Each name=file argument loads a file as a table before the shell starts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s pokemon=pokemon.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"select name from pokemon where id > 1\" pokemon=pokemon.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f csv -q \"select * from donations\" donations=donations.json\n", os.Args[0])
	}

	flag.Parse()

	switch *formatFlag {
	case "table", "csv", "jsonl":
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format '%s'\n", *formatFlag)
		fmt.Fprintf(os.Stderr, "Supported formats: table, csv, jsonl\n")
		os.Exit(1)
	}

	cfg, err := LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level, *debugFlag),
	}))

	db := engine.New(engine.WithLogger(logger))

	for _, src := range cfg.Tables {
		if err := loadFile(db, src.Name, src.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", src.Path, err)
			os.Exit(1)
		}
	}
	for _, arg := range flag.Args() {
		name, path, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: expected name=file, got %q\n", arg)
			os.Exit(1)
		}
		if err := loadFile(db, name, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	if *queryFlag != "" {
		result, err := db.Execute(*queryFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if result != nil {
			printResult(result, *formatFlag)
		}
		return
	}

	repl(db, cfg)
}

// loadFile registers a file as a table, choosing the ingester by file
// extension.
func loadFile(db *engine.Database, name, path string) error {
	switch {
	case strings.HasSuffix(path, ".json"), strings.HasSuffix(path, ".jsonl"), strings.HasSuffix(path, ".ndjson"):
		return db.LoadJSONFile(name, path)
	case strings.HasSuffix(path, ".parquet"):
		return db.LoadParquet(name, path)
	default:
		return db.LoadCSV(name, path, ingest.CSVOptions{Header: true, Delimiter: ','})
	}
}

// repl runs the interactive loop. Statements may span lines and end
// with a semicolon; a lone keyword like "tables" or "exit" runs
// immediately.
func repl(db *engine.Database, cfg *Config) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("type \"help\" for help, \"exit\" to quit")

	var buf strings.Builder

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears the statement buffer.
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(cfg.Prompt)
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 {
			switch strings.ToLower(strings.TrimSuffix(line, ";")) {
			case "exit", "quit", "\\q":
				return
			case "help":
				printHelp()
				continue
			case "tables":
				for _, name := range db.Catalog().Names() {
					fmt.Println(name)
				}
				continue
			}
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)

		if !strings.HasSuffix(line, ";") {
			rl.SetPrompt("...> ")
			continue
		}

		stmt := buf.String()
		buf.Reset()
		rl.SetPrompt(cfg.Prompt)

		result, err := db.Execute(stmt)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if result == nil {
			fmt.Println("ok")
			continue
		}
		printResult(result, *formatFlag)
	}
}

func printHelp() {
	fmt.Println(`commands:
  tables                 list loaded tables
  help                   show this help
  exit | quit            quit

sql:
  end statements with ';' (multiline input is supported)

  select name from pokemon where id > 1;
  select d.amt, m.name from donations d join masterdata m on pokemon_id = pokemon_identifier;
  create table big as select * from donations where amt > 1000;
  copy big to 'big.csv' (header true);
  copy pokemon from 'pokemon.csv';`)
}

func printResult(t *table.Table, format string) {
	switch format {
	case "csv":
		if err := output.WriteCSV(os.Stdout, t, output.CSVOptions{Header: true, Delimiter: ','}); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		}
	case "jsonl":
		if err := output.WriteJSONLines(os.Stdout, t); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		}
	default:
		output.Render(os.Stdout, t)
		fmt.Printf("(%d rows)\n", t.NumRows())
	}
}

func logLevel(level string, debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
