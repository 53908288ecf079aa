package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdef/pdef-go/clientgen"
	"github.com/pdef/pdef-go/internal/demo"
)

type GenCmd struct {
	Out         string `arg:"" help:"Output directory for the generated client."`
	Package     string `help:"Package name of the generated file." short:"p" default:"notesclient"`
	PackagePath string `help:"Import path of the generated package." name:"package-path"`
	File        string `help:"Generated file name." short:"f" default:"pdef_client.go"`
}

func (c *GenCmd) Run() error {
	out, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	cfg := clientgen.Config{
		Package:     c.Package,
		PackagePath: c.PackagePath,
		FileName:    c.File,
	}
	schema := demo.NewSchema()
	if err := clientgen.Generate(context.Background(), cfg, clientgen.NewDirSink(out), schema.Notes); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", filepath.Join(out, c.File))
	return nil
}
