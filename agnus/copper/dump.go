package copper

import (
	"bufio"
	"fmt"
	"io"
)

// Dump writes the program as a Go source fragment: a []uint16 literal with
// one instruction per line, followed by the index constants of its list
// info.
func (p *Program) Dump(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "var %s = []uint16{\n", name)
	for i := 0; i+1 < len(p.Words); i += 2 {
		in, err := decodeOne(p.Words[i], p.Words[i+1])
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "\t0x%04x, 0x%04x, // %3d: %s\n", p.Words[i], p.Words[i+1], i, in)
	}
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "const (")
	indexes := []struct {
		name string
		idx  int
	}{
		{"FMode", p.Info.FMode}, {"DiwStrt", p.Info.DiwStrt}, {"DiwStop", p.Info.DiwStop},
		{"DdfStrt", p.Info.DdfStrt}, {"DdfStop", p.Info.DdfStop}, {"BplCon0", p.Info.BplCon0},
		{"BplCon1", p.Info.BplCon1}, {"BplCon2", p.Info.BplCon2}, {"Bpl1Mod", p.Info.Bpl1Mod},
		{"Bpl2Mod", p.Info.Bpl2Mod}, {"Bpl1PtH", p.Info.Bpl1PtH}, {"Spr0PtH", p.Info.Spr0PtH},
		{"Color00", p.Info.Color00},
	}
	for _, ix := range indexes {
		fmt.Fprintf(bw, "\t%s%sIndex = %d\n", name, ix.name, ix.idx)
	}
	fmt.Fprintf(bw, "\t%sSizeWords = %d\n", name, len(p.Words))
	fmt.Fprintln(bw, ")")

	return bw.Flush()
}

func decodeOne(first, second uint16) (Instruction, error) {
	ins, err := Decode([]uint16{first, second, 0xffff, 0xfffe})
	if err != nil {
		return Instruction{}, err
	}
	return ins[0], nil
}
