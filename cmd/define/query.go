package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dostiep/360i/define"
	_ "github.com/mattn/go-sqlite3"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use: "query ( - | <sql> ) <template>...",

	Short: "Executes a SQL query against one or more generated templates.",

	Example: `
Inline:

  $ define-template query "select dataset, variable, count(*) from terms group by 1, 2" template.json

Use - to read from stdin:

  $ define-template query - template.json
  select variable, term from terms
  where dataset = 'VS'
  order by variable, term
  ^D
`,

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			cmd.Usage()
			return
		}

		stmt := args[0]

		// Read the SQL from stdin
		if stmt == "-" {
			b, err := io.ReadAll(os.Stdin)

			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			stmt = string(b)
		}

		db, err := newDatabase()

		if err != nil {
			panic(err)
		}

		for _, path := range args[1:] {
			t, err := readTemplate(path)

			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			if err = loadTemplate(db, t); err != nil {
				panic(err)
			}
		}

		err = queryDatabase(db, stmt, os.Stdout)

		if err != nil {
			fmt.Printf("query error: %s\n", err)
			os.Exit(1)
		}
	},
}

func newDatabase() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		return nil, err
	}

	stmts := []string{
		`CREATE TABLE variables (
			study TEXT,
			dataset TEXT,
			variable TEXT,
			label TEXT,
			data_type TEXT,
			role TEXT,
			codelist TEXT,
			vlm_entries INTEGER
		)`,
		`CREATE TABLE terms (
			study TEXT,
			dataset TEXT,
			variable TEXT,
			codelist_code TEXT,
			codelist_name TEXT,
			short_name TEXT,
			term_code TEXT,
			term TEXT,
			decoded TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err = db.Exec(stmt); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func loadTemplate(db *sql.DB, t *define.Template) error {
	for dataset, ds := range t.Datasets {
		for _, v := range ds.Variables {
			_, err := db.Exec(
				"insert into variables values (?, ?, ?, ?, ?, ?, ?, ?)",
				t.Study.StudyName,
				dataset,
				v.Variable,
				v.Label,
				v.DataType,
				v.Role,
				strings.Join(v.CodeList, "|"),
				len(v.VLM),
			)

			if err != nil {
				return err
			}
		}
	}

	for i := range t.CodeLists {
		cl := &t.CodeLists[i]

		for _, entry := range cl.CodeList {
			for _, term := range entry.Terms {
				_, err := db.Exec(
					"insert into terms values (?, ?, ?, ?, ?, ?, ?, ?, ?)",
					t.Study.StudyName,
					cl.Dataset,
					cl.Variable,
					entry.NCICodelistCode,
					entry.Name,
					entry.ShortName,
					term.NCITermCode,
					term.Term,
					strings.Join(term.DecodedValue, "; "),
				)

				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func queryDatabase(db *sql.DB, stmt string, w io.Writer) error {
	rows, err := db.Query(stmt)

	if err != nil {
		return err
	}

	defer rows.Close()

	cols, err := rows.Columns()

	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(cols)

	row := make([]interface{}, len(cols))
	out := make([]string, len(row))

	for i := range row {
		row[i] = new(sql.NullString)
	}

	for rows.Next() {
		if err = rows.Scan(row...); err != nil {
			return err
		}

		for i, v := range row {
			ns := v.(*sql.NullString)

			if ns.Valid {
				out[i] = ns.String
			} else {
				out[i] = ""
			}
		}

		tw.Append(out)
	}

	tw.Render()

	return rows.Err()
}
