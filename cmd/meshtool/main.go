// meshtool is a CLI utility for inspecting and converting lumen mesh files.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/lumen/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "convert":
		err = cmdConvert(os.Stdout, args)
	case "dump":
		err = cmdDump(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - lumen mesh utility

Usage:
  meshtool <command> [options]

Commands:
  info <file>                   Show pool sizes, triangle count and bounds
  convert [-o out.mesh] <file>  Convert a Wavefront OBJ file to a mesh binary
  dump [-n N] <file>            Print expanded vertices (position, uv, normal)

Files ending in .obj are read as Wavefront OBJ, anything else as a mesh binary.

Examples:
  meshtool info assets/horns.mesh
  meshtool convert -o assets/horns.mesh horns.obj
  meshtool dump -n 12 assets/horns.mesh`)
}

// loadSource reads path as OBJ or mesh binary depending on its extension.
func loadSource(path string) (*formats.MeshSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		return formats.ParseOBJFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := formats.ReadMeshSource(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return src, nil
}

func expand(src *formats.MeshSource, path string) (*formats.MeshData, error) {
	md, err := src.Expand()
	if err != nil {
		return nil, withPath(err, path)
	}
	return md, nil
}

func withPath(err error, path string) error {
	var malformed *formats.MalformedAssetError
	if errors.As(err, &malformed) && malformed.Path == "" {
		malformed.Path = path
	}
	return err
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshtool info <file>")
	}
	path := args[0]

	src, err := loadSource(path)
	if err != nil {
		return err
	}
	md, err := expand(src, path)
	if err != nil {
		return err
	}
	lo, hi := src.Bounds()

	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Positions:  %d\n", len(src.Positions))
	fmt.Fprintf(w, "Normals:    %d\n", len(src.Normals))
	fmt.Fprintf(w, "TexCoords:  %d\n", len(src.TexCoords))
	fmt.Fprintf(w, "Faces:      %d vertices, %d triangles\n", len(src.Faces), src.TriangleCount())
	fmt.Fprintf(w, "Expanded:   %d vertices, %d floats\n", md.VertexCount,
		len(md.Positions)+len(md.Normals)+len(md.TexCoords))
	fmt.Fprintf(w, "Bounds:     (%g, %g, %g) .. (%g, %g, %g)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	if len(src.Faces)%3 != 0 {
		fmt.Fprintf(w, "Warning:    %d trailing face vertices do not form a triangle\n", len(src.Faces)%3)
	}
	return nil
}

func cmdConvert(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	out := fs.String("o", "", "Output path (default: input with .mesh extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: meshtool convert [-o out.mesh] <file.obj>")
	}
	in := fs.Arg(0)

	src, err := formats.ParseOBJFile(in)
	if err != nil {
		return err
	}
	// Reject what the viewer would reject.
	if _, err := expand(src, in); err != nil {
		return err
	}

	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(in, filepath.Ext(in)) + ".mesh"
	}

	var buf bytes.Buffer
	if err := formats.WriteMesh(&buf, src); err != nil {
		return err
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s: %d triangles, %d bytes\n", dst, src.TriangleCount(), buf.Len())
	return nil
}

func cmdDump(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	limit := fs.Int("n", 0, "Limit output to N vertices (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: meshtool dump [-n N] <file>")
	}
	path := fs.Arg(0)

	src, err := loadSource(path)
	if err != nil {
		return err
	}
	md, err := expand(src, path)
	if err != nil {
		return err
	}

	n := md.VertexCount
	if *limit > 0 && *limit < n {
		n = *limit
	}
	for i := 0; i < n; i++ {
		p := md.Positions[i*3 : i*3+3]
		t := md.TexCoords[i*2 : i*2+2]
		nr := md.Normals[i*3 : i*3+3]
		fmt.Fprintf(w, "%6d  pos (%g, %g, %g)  uv (%g, %g)  n (%g, %g, %g)\n",
			i, p[0], p[1], p[2], t[0], t[1], nr[0], nr[1], nr[2])
	}
	if n < md.VertexCount {
		fmt.Fprintf(w, "... %d more\n", md.VertexCount-n)
	}
	return nil
}
