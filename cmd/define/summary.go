package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/dostiep/360i/define"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Summary aggregates per-dataset statistics for a generated template.
type Summary struct {
	variables int
	withVLM   int
	codelists int
	terms     int
}

func (s *Summary) Index(ds *define.Dataset) {
	s.variables += len(ds.Variables)

	for _, v := range ds.Variables {
		if len(v.VLM) > 0 {
			s.withVLM++
		}
	}
}

func (s *Summary) IndexCodeLists(cl *define.VariableCodeLists) {
	for _, entry := range cl.CodeList {
		s.codelists++
		s.terms += len(entry.Terms)
	}
}

var summaryCmd = &cobra.Command{
	Use: "summary <template>",

	Short: "Prints summary statistics for a generated define template.",

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			cmd.Usage()
			os.Exit(1)
		}

		t, err := readTemplate(args[0])

		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		names := make([]string, 0, len(t.Datasets))

		for name := range t.Datasets {
			names = append(names, name)
		}

		sort.Strings(names)

		summaries := make(map[string]*Summary)

		for _, name := range names {
			s := &Summary{}
			s.Index(t.Datasets[name])
			summaries[name] = s
		}

		for i := range t.CodeLists {
			cl := &t.CodeLists[i]

			if s, ok := summaries[cl.Dataset]; ok {
				s.IndexCodeLists(cl)
			}
		}

		fmt.Printf("Study: %s\n", t.Study.StudyName)

		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"Dataset", "Class", "Variables", "With VLM", "Codelists", "Terms"})

		for _, name := range names {
			s := summaries[name]

			tw.Append([]string{
				name,
				t.Datasets[name].Class,
				strconv.Itoa(s.variables),
				strconv.Itoa(s.withVLM),
				strconv.Itoa(s.codelists),
				strconv.Itoa(s.terms),
			})
		}

		tw.Render()
	},
}
