// mdxtool is a CLI utility for inspecting and rendering MDX models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/mdxview/internal/engine/animation"
	"github.com/Faultbox/mdxview/internal/engine/render"
	"github.com/Faultbox/mdxview/internal/logger"
	"github.com/Faultbox/mdxview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Commands log only warnings unless MDXTOOL_DEBUG is set
	level := "warn"
	if os.Getenv("MDXTOOL_DEBUG") != "" {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bones":
		cmdBones(args)
	case "seqs", "sequences":
		cmdSeqs(args)
	case "snap", "snapshot":
		cmdSnap(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mdxtool - MDX model utility

Usage:
  mdxtool <command> [options]

Commands:
  info <file.mdx>              Show model information
  bones <file.mdx>             Print the node hierarchy
  seqs <file.mdx>              List animation sequences
  snap [options] <file.mdx>    Render a snapshot image

Examples:
  mdxtool info footman.mdx
  mdxtool bones footman.mdx
  mdxtool snap -seq "Stand" -size 1024 footman.mdx footman.webp`)
}

func loadModel(path string) *formats.MDX {
	model, err := formats.ParseMDXFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return model
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdxtool info <file.mdx>")
		os.Exit(1)
	}

	model := loadModel(args[0])

	fmt.Printf("Model:     %s\n", model.Name)
	fmt.Printf("Version:   %d\n", model.Version)
	fmt.Printf("Sequences: %d\n", len(model.Sequences))
	fmt.Printf("Textures:  %d\n", len(model.Textures))
	fmt.Printf("Materials: %d\n", len(model.Materials))
	fmt.Printf("Geosets:   %d\n", len(model.Geosets))
	fmt.Printf("Bones:     %d (+%d helpers)\n", len(model.Bones), len(model.Helpers))
	fmt.Printf("Tracks:    %d\n", len(model.Tracks))
	fmt.Printf("Vertices:  %d\n", model.TotalVertexCount())
	fmt.Printf("Faces:     %d\n", model.TotalFaceCount())
	fmt.Printf("Animated:  %v\n", model.HasAnimation())

	if len(model.Textures) > 0 {
		fmt.Println()
		fmt.Println("Textures:")
		for i, tex := range model.Textures {
			name := tex.Filename
			if name == "" {
				name = fmt.Sprintf("(replaceable %d)", tex.ReplaceableID)
			}
			fmt.Printf("  %2d  %s\n", i, name)
		}
	}
}

func cmdBones(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdxtool bones <file.mdx>")
		os.Exit(1)
	}

	model := loadModel(args[0])

	type namedNode struct {
		node   *formats.MDXNode
		helper bool
	}
	nodes := make([]namedNode, 0, model.NodeCount())
	for i := range model.Bones {
		nodes = append(nodes, namedNode{&model.Bones[i], false})
	}
	for i := range model.Helpers {
		nodes = append(nodes, namedNode{&model.Helpers[i], true})
	}
	if len(nodes) == 0 {
		fmt.Println("(no skeleton)")
		return
	}

	children := make(map[int32][]int)
	byID := make(map[int32]bool, len(nodes))
	for _, n := range nodes {
		byID[int32(n.node.ObjectID)] = true
	}
	roots := make([]int, 0)
	for i, n := range nodes {
		parent := n.node.ParentID
		if parent < 0 || !byID[parent] {
			roots = append(roots, i)
			continue
		}
		children[parent] = append(children[parent], i)
	}

	var printNode func(idx, depth int)
	printNode = func(idx, depth int) {
		n := nodes[idx]
		kind := "bone"
		if n.helper {
			kind = "helper"
		}
		tracks := describeTracks(n.node)
		fmt.Printf("%s%s  [%s id=%d%s]\n",
			strings.Repeat("  ", depth), n.node.Name, kind, n.node.ObjectID, tracks)
		for _, c := range children[int32(n.node.ObjectID)] {
			printNode(c, depth+1)
		}
	}
	for _, r := range roots {
		printNode(r, 0)
	}
}

func describeTracks(node *formats.MDXNode) string {
	var parts []string
	if node.TranslationTrack >= 0 {
		parts = append(parts, "T")
	}
	if node.RotationTrack >= 0 {
		parts = append(parts, "R")
	}
	if node.ScalingTrack >= 0 {
		parts = append(parts, "S")
	}
	if node.VisibilityTrack >= 0 {
		parts = append(parts, "V")
	}
	if len(parts) == 0 {
		return ""
	}
	return " anim=" + strings.Join(parts, "")
}

func cmdSeqs(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdxtool seqs <file.mdx>")
		os.Exit(1)
	}

	model := loadModel(args[0])
	if len(model.Sequences) == 0 {
		fmt.Println("(no sequences)")
		return
	}

	fmt.Printf("%-24s %8s %8s %8s  %s\n", "NAME", "START", "END", "LENGTH", "FLAGS")
	for _, seq := range model.Sequences {
		flags := "loop"
		if seq.NonLooping {
			flags = "once"
		}
		fmt.Printf("%-24s %8d %8d %8d  %s\n",
			seq.Name, seq.Start, seq.End, seq.Length(), flags)
	}
}

func cmdSnap(args []string) {
	fs := flag.NewFlagSet("snap", flag.ExitOnError)
	size := fs.Int("size", 512, "Output image edge length")
	supersample := fs.Int("ss", 2, "Supersampling factor")
	yaw := fs.Float64("yaw", 30, "View yaw in degrees")
	pitch := fs.Float64("pitch", 15, "View pitch in degrees")
	seqName := fs.String("seq", "", "Pose at the start of this sequence")
	frame := fs.Int("frame", -1, "Pose at this exact frame (overrides -seq)")
	texDir := fs.String("textures", "", "Texture directory (default: model directory)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdxtool snap [options] <file.mdx> [output]")
		os.Exit(1)
	}

	modelPath := fs.Arg(0)
	model := loadModel(modelPath)

	outputPath := strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".webp"
	if fs.NArg() > 1 {
		outputPath = fs.Arg(1)
	}

	sys := animation.NewSystem()
	sys.InitFromModel(model)

	poseFrame := float32(0)
	switch {
	case *frame >= 0:
		poseFrame = float32(*frame)
	case *seqName != "":
		seq := model.SequenceByName(*seqName)
		if seq == nil {
			fmt.Fprintf(os.Stderr, "Sequence not found: %s\n", *seqName)
			os.Exit(1)
		}
		poseFrame = float32(seq.Start)
	case len(model.Sequences) > 0:
		poseFrame = float32(model.Sequences[0].Start)
	}
	sys.Update(poseFrame)

	dir := *texDir
	if dir == "" {
		dir = filepath.Dir(modelPath)
	}

	opts := render.Options{
		Size:        *size,
		Supersample: *supersample,
		Yaw:         float32(*yaw),
		Pitch:       float32(*pitch),
		Textures:    render.NewDirResolver(dir),
	}

	img := render.Snapshot(model, sys, opts)
	if err := render.WriteImage(outputPath, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errors.Cause(err))
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%dx%d, frame %g)\n", outputPath, *size, *size, poseFrame)
}
