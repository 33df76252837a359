package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-agnus/agnus/copper"
)

// DumpCopper writes p as a standalone Go source file in package pkg.
func DumpCopper(w io.Writer, pkg, name string, p *copper.Program) error {
	if _, err := fmt.Fprintf(w, "// Code generated by gen_copper. DO NOT EDIT.\n\npackage %s\n\n", pkg); err != nil {
		return err
	}
	return p.Dump(w, name)
}

// DumpCopperFile writes the listing of p to path.
func DumpCopperFile(path, pkg, name string, p *copper.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dumping copper list: %w", err)
	}
	if err := DumpCopper(f, pkg, name, p); err != nil {
		f.Close()
		return fmt.Errorf("dumping copper list: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("Copper list written", "path", path, "words", len(p.Words))
	return nil
}
