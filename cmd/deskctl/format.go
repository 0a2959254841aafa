package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printChat(w io.Writer, resp model.ChatResponse) {
	fmt.Fprintln(w, resp.Response)
	if resp.RequiresCase {
		fmt.Fprintf(w, "  (case needed: %s)\n", resp.CaseType)
	}
	for _, c := range resp.Cases {
		printCase(w, c)
	}
}

func printCase(w io.Writer, v model.CaseView) {
	fmt.Fprintf(w, "Case %s  [%s]  %s\n", v.ID, v.Status, v.Intent)
	fmt.Fprintf(w, "  %s\n", v.Description)
	if v.ThreadID != "" {
		fmt.Fprintf(w, "  thread: %s\n", v.ThreadID)
	}
	if resp := v.Response(); resp != "" {
		for _, line := range strings.Split(strings.TrimSpace(resp), "\n") {
			fmt.Fprintf(w, "  | %s\n", line)
		}
	}
	if v.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", v.Error)
	}
}

func printCaseTable(w io.Writer, cases []model.Case) {
	if len(cases) == 0 {
		fmt.Fprintln(w, "No cases found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINTENT\tSTATUS\tCREATED")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Intent, c.Status, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
