package main

import (
	"encoding/base64"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
)

const previewRunes = 60

var valueColumns = []tableColumn{
	{Header: "Index", Align: text.AlignRight},
	{Header: "Size", Align: text.AlignRight},
	{Header: "Value", Align: text.AlignLeft},
}

// valueView is the JSON shape of one queue value. Payloads that are not valid
// UTF-8 are emitted as base64.
type valueView struct {
	Index    int    `json:"index"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Value    string `json:"value"`
}

func newValueViews(values [][]byte, offset int) []valueView {
	views := make([]valueView, len(values))
	for i, v := range values {
		view := valueView{Index: offset + i, Size: len(v), Encoding: "utf-8", Value: string(v)}
		if !utf8.Valid(v) {
			view.Encoding = "base64"
			view.Value = base64.StdEncoding.EncodeToString(v)
		}
		views[i] = view
	}
	return views
}

func valueRows(views []valueView) [][]string {
	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{
			strconv.Itoa(v.Index),
			humanize.IBytes(uint64(v.Size)),
			previewValue(v),
		}
	}
	return rows
}

// previewValue flattens a value onto one line and truncates long payloads.
func previewValue(v valueView) string {
	if v.Encoding != "utf-8" {
		return "(binary)"
	}
	flat := strings.Join(strings.Fields(v.Value), " ")
	if utf8.RuneCountInString(flat) <= previewRunes {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:previewRunes-1]) + "…"
}
