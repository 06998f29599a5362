package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/binlayout/layout"
	"github.com/wippyai/binlayout/layoutyaml"
)

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to YAML schema file")
		describe    = flag.Bool("describe", false, "Print the layout structure and exit")
		decodeHex   = flag.String("decode", "", "Hex bytes to decode (- for stdin)")
		encodeFile  = flag.String("encode", "", "YAML value file to encode (- for stdin)")
		staticSize  = flag.Bool("static-size", false, "Print the static encoded size, if any")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: binlayout -schema <file.yaml> -describe")
		fmt.Fprintln(os.Stderr, "       binlayout -schema <file.yaml> -decode <hex|->")
		fmt.Fprintln(os.Stderr, "       binlayout -schema <file.yaml> -encode <value.yaml|->")
		fmt.Fprintln(os.Stderr, "       binlayout -schema <file.yaml> -static-size")
		fmt.Fprintln(os.Stderr, "       binlayout -schema <file.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		layout.SetLogger(logger)
		layout.SetDebug(true)
	}

	l, err := loadSchema(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*schemaFile, l); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(l, *describe, *decodeHex, *encodeFile, *staticSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSchema(path string) (*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	l, err := layoutyaml.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return l, nil
}

func run(l *layout.Layout, describe bool, decodeHex, encodeFile string, staticSize bool) error {
	switch {
	case describe:
		fmt.Print(describeLayout(l, 0))
		return nil

	case staticSize:
		if n, ok := layout.StaticSize(l); ok {
			fmt.Printf("%d bytes\n", n)
		} else {
			fmt.Println("dynamic (size depends on the value)")
		}
		return nil

	case decodeHex != "":
		data, err := readHex(decodeHex)
		if err != nil {
			return err
		}
		v, err := layout.Deserialize(l, data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Print(string(out))
		return nil

	case encodeFile != "":
		var src []byte
		var err error
		if encodeFile == "-" {
			src, err = io.ReadAll(os.Stdin)
		} else {
			src, err = os.ReadFile(encodeFile)
		}
		if err != nil {
			return fmt.Errorf("read value: %w", err)
		}
		v, err := layoutyaml.ParseValue(src)
		if err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		data, err := layout.Serialize(l, v)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		fmt.Println(hex.EncodeToString(data))
		return nil
	}

	return fmt.Errorf("nothing to do: pass -describe, -decode, -encode, -static-size, or -i")
}

func readHex(arg string) ([]byte, error) {
	s := arg
	if arg == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		s = string(raw)
	}
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}

func describeLayout(l *layout.Layout, indent int) string {
	var b strings.Builder
	pad := strings.Repeat("  ", indent)

	if it, ok := l.Item(); ok {
		b.WriteString(pad + describeItem(it, indent) + "\n")
		return b.String()
	}
	for _, f := range l.Fields() {
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		b.WriteString(pad + name + ": " + describeItem(f.Item, indent) + "\n")
	}
	return b.String()
}

func describeItem(it layout.Item, indent int) string {
	var b strings.Builder

	switch it.Kind {
	case layout.KindNumeric:
		sign := "u"
		if it.Signed {
			sign = "s"
		}
		fmt.Fprintf(&b, "%s%d", sign, it.Size*8)
		if it.Order == layout.LittleEndian {
			b.WriteString("le")
		} else if it.Order == layout.BigEndian {
			b.WriteString("be")
		}

	case layout.KindBytes:
		b.WriteString("bytes " + describeLen(it.Len))
		if it.Nested != nil {
			b.WriteString(" {\n")
			b.WriteString(describeLayout(it.Nested, indent+1))
			b.WriteString(strings.Repeat("  ", indent) + "}")
		}

	case layout.KindArray:
		b.WriteString("array " + describeLen(it.Len) + " of {\n")
		b.WriteString(describeLayout(it.Elem, indent+1))
		b.WriteString(strings.Repeat("  ", indent) + "}")

	case layout.KindSwitch:
		fmt.Fprintf(&b, "switch on %d-byte identifier", it.Size)
		for _, v := range it.Variants {
			b.WriteString("\n" + strings.Repeat("  ", indent+1))
			if v.Label != "" {
				fmt.Fprintf(&b, "case %d (%s) {\n", v.Tag, v.Label)
			} else {
				fmt.Fprintf(&b, "case %d {\n", v.Tag)
			}
			b.WriteString(describeLayout(v.Layout, indent+2))
			b.WriteString(strings.Repeat("  ", indent+1) + "}")
		}
	}

	if f, ok := it.Conversion.(layout.Fixed); ok {
		fmt.Fprintf(&b, " const=%v", f.Decoded)
	} else if it.Conversion != nil {
		b.WriteString(" (custom conversion)")
	}
	if it.Omit {
		b.WriteString(" omitted")
	}
	return b.String()
}

func describeLen(ls layout.LenSpec) string {
	switch ls.Kind {
	case layout.LenPrefix:
		return fmt.Sprintf("prefix(%d)", ls.PrefixWidth)
	case layout.LenRemainder:
		return "remainder"
	}
	return fmt.Sprintf("[%d]", ls.N)
}
