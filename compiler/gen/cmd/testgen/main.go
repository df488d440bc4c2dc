// testgen is a simple test program to demonstrate the Jennifer-based code generator.
// Run: go run ./compiler/gen/cmd/testgen
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syssam/derive/compiler/gen"
	"github.com/syssam/derive/compiler/load"
)

// sample mirrors the types of examples/point.
const sample = `package point

import "github.com/syssam/derive"

//derive:builder,debug
type Command struct {
	Executable string
	Args       []string ` + "`builder:\"each=Arg\"`" + `
	Env        []string ` + "`builder:\"each=Env\"`" + `
	CurrentDir *string
}

//derive:debug
type Register struct {
	Addr  uint16 ` + "`debug:\"0x%04x\"`" + `
	Flags uint8  ` + "`debug:\"0b%08b\"`" + `
}

//derive:builder,debug
type Tagged[M any, T any] struct {
	ID     int
	Value  T
	marker derive.Phantom[M]
}
`

func main() {
	// Create a temp directory for output
	outDir, err := os.MkdirTemp("", "derive-jennifer-test-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Output directory: %s\n", outDir)

	source := filepath.Join(outDir, "point.go")
	if err := os.WriteFile(source, []byte(sample), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write sample: %v\n", err)
		os.Exit(1)
	}
	pkg, err := load.ParseFile("example.com/test/point", source, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse sample: %v\n", err)
		os.Exit(1)
	}

	// Create config with functional options
	config, err := gen.NewConfig(
		gen.WithWorkers(2),
		gen.WithFeatures(gen.FeatureBuilder, gen.FeatureDebug),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generating code with Jennifer...")
	if err := gen.Generate(context.Background(), config, pkg); err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	output := gen.OutputFile(source, "_derive")
	content, err := os.ReadFile(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n--- %s (%d bytes) ---\n", filepath.Base(output), len(content))
	os.Stdout.Write(content)

	fmt.Printf("\nTo inspect generated code: ls -la %s\n", outDir)
	fmt.Println("Done!")
}
