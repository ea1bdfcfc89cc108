package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/relsim/internal/dynamo"
)

type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

func exportTo(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	data := ExportData{
		Meta:   meta,
		Times:  result.Times,
		States: make([][]float64, len(result.States)),
	}
	for i, s := range result.States {
		data.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, meta RunMetadata, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportTo(file, meta, result)
}

func ExportJSONStdout(meta RunMetadata, result *dynamo.Result) error {
	return exportTo(os.Stdout, meta, result)
}
