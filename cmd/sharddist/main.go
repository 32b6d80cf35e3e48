package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"text/tabwriter"

	"github.com/aclements/go-moremath/stats"
	"github.com/alecthomas/kong"

	"github.com/lab5e/shardfunk/pkg/shardfunk/sharding"
	"github.com/lab5e/shardfunk/pkg/topology"
)

// This program hashes a series of synthetic keys and builds an image
// showing which shard each key lands on, one color per shard.

type parameters struct {
	Keys     int    `kong:"help='Number of keys to hash',default='8192'"`
	Shards   int    `kong:"help='Number of shards (ignored if a topology is set)',default='15'"`
	Topology string `kong:"help='Topology file to read the shard count from',type='existingfile'"`
	Prefix   string `kong:"help='Key prefix',default='key'"`
	Output   string `kong:"help='Output image',default='sharddist.png'"`
	Width    int    `kong:"help='Image width in pixels',default='128'"`
}

// shardColor spreads the shards over the hue circle
func shardColor(shard, shards int) color.NRGBA {
	h := float64(shard) / float64(shards) * 6.0
	x := 1 - math.Abs(math.Mod(h, 2)-1)
	var r, g, b float64
	switch int(h) {
	case 0:
		r, g = 1, x
	case 1:
		r, g = x, 1
	case 2:
		g, b = 1, x
	case 3:
		g, b = x, 1
	case 4:
		r, b = x, 1
	default:
		r, b = 1, x
	}
	return color.NRGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func dumpImage(name string, width int, keyShards []int, shards int) error {
	height := len(keyShards) / width
	if len(keyShards)%width > 0 {
		height++
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	keyNo := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if keyNo < len(keyShards) {
				img.Set(x, y, shardColor(keyShards[keyNo], shards))
			} else {
				img.Set(x, y, color.NRGBA{
					R: 255,
					G: 255,
					B: 255,
					A: 255,
				})
			}
			keyNo++
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Debugging: Make an image to visualise the distribution of keys across
// shards.
func main() {
	var config parameters
	k, err := kong.New(&config, kong.Name("sharddist"),
		kong.Description("Key distribution image"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: false,
		}))
	if err != nil {
		panic(err)
	}
	if _, err := k.Parse(os.Args[1:]); err != nil {
		k.FatalIfErrorf(err)
		return
	}

	shards := config.Shards
	if config.Topology != "" {
		ranges, err := topology.Load(config.Topology)
		if err != nil {
			k.FatalIfErrorf(err)
			return
		}
		descs, err := topology.Resolve(ranges)
		if err != nil {
			k.FatalIfErrorf(err)
			return
		}
		shards = len(descs)
	}
	if shards < 1 || config.Keys < 1 || config.Width < 1 {
		k.Fatalf("shards, keys and width must be positive")
		return
	}

	shardFunc := sharding.NewSHA1Sharder(shards)
	keyShards := make([]int, config.Keys)
	counts := make([]float64, shards)
	for i := range keyShards {
		keyShards[i] = shardFunc(fmt.Sprintf("%s%d", config.Prefix, i))
		counts[keyShards[i]]++
	}

	if err := dumpImage(config.Output, config.Width, keyShards, shards); err != nil {
		k.FatalIfErrorf(err)
		return
	}

	table := tabwriter.NewWriter(os.Stdout, 1, 3, 1, ' ', 0)
	table.Write([]byte("Shard\tKeys\tPercent\n"))
	for i, c := range counts {
		table.Write([]byte(fmt.Sprintf("%d\t%d\t(%3.1f%%)\n", i, int(c), c/float64(config.Keys)*100.0)))
	}
	table.Flush()
	sample := stats.Sample{Xs: counts}
	fmt.Printf("\nMean: %.1f  Std.dev: %.1f  Image: %s\n", sample.Mean(), sample.StdDev(), config.Output)
}
