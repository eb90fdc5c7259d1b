package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/olekukonko/tablewriter"
)

var output_formats = []string{"text", "table", "json"}

func renderText(out io.Writer, title string,
	dict *ordereddict.Dict, label_width int) error {
	_, err := fmt.Fprintln(out, title)
	if err != nil {
		return err
	}

	for _, k := range dict.Keys() {
		v, _ := dict.Get(k)
		_, err = fmt.Fprintf(out, "[+] %-*s %v\n", label_width, k+":", v)
		if err != nil {
			return err
		}
	}
	return nil
}

func renderTable(out io.Writer, title string, dict *ordereddict.Dict) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.SetCaption(true, title)

	for _, k := range dict.Keys() {
		v, _ := dict.Get(k)
		table.Append([]string{k, fmt.Sprintf("%v", v)})
	}
	table.Render()
	return nil
}

func renderJSON(out io.Writer, dict *ordereddict.Dict) error {
	serialized, err := json.MarshalIndent(dict, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(serialized))
	return err
}

func render(out io.Writer, format string, title string,
	dict *ordereddict.Dict, label_width int) error {
	switch format {
	case "text":
		return renderText(out, title, dict, label_width)
	case "table":
		return renderTable(out, title, dict)
	case "json":
		return renderJSON(out, dict)
	}
	return fmt.Errorf("Unknown output format %q", format)
}
