package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pdef/pdef-go"
	"github.com/pdef/pdef-go/internal/demo"
)

type DescribeCmd struct {
	Interface string `help:"Only describe the named interface." short:"i"`
	Types     bool   `help:"Include messages and enums." short:"t"`
}

func (c *DescribeCmd) Run() error {
	return c.write(os.Stdout)
}

func (c *DescribeCmd) write(w io.Writer) error {
	schema := demo.NewSchema()
	manifest := pdef.Describe(schema.Notes, pdef.DescribeOptions{
		Interface: c.Interface,
		Types:     c.Types,
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}
