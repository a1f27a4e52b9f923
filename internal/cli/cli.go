package cli

import (
	"github.com/alecthomas/kong"
)

// CLI is the pixelise command line.
type CLI struct {
	Debug    bool             `help:"Enable debug logging"`
	Version  kong.VersionFlag `help:"Print version information and quit"`
	Pixelate PixelateCmd      `cmd:"" default:"withargs" help:"Pixelate every picture in a folder (default command)"`
}

// Options returns the kong options shared by the binary and tests.
func Options(version string) []kong.Option {
	return []kong.Option{
		kong.Name("pixelise"),
		kong.Description("Mode-filter pixelation for folders of pictures."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}
}
