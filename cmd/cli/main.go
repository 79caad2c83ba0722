package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/glizzus/sound-stego/internal/stego"
	"github.com/glizzus/sound-stego/internal/transcode"
	"github.com/urfave/cli/v2"
)

var stdinReader = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	input, _ := stdinReader.ReadString('\n')
	return strings.TrimSpace(input)
}

// keyFrom returns the --key flag, asking on stdin when it was not given.
func keyFrom(c *cli.Context) []byte {
	key := c.String("key")
	if key == "" {
		key = prompt("Enter key (16, 24 or 32 bytes)")
	}
	return []byte(key)
}

func exitWith(err error) error {
	return cli.Exit(fmt.Sprintf("%s: %v", stego.KindOf(err), err), 1)
}

var audioFlag = &cli.StringFlag{
	Name:     "audio",
	Usage:    "Path to the carrier audio file",
	Required: true,
}

var keyFlag = &cli.StringFlag{
	Name:  "key",
	Usage: "AES key; prompted for when omitted",
}

var ffmpegFlag = &cli.StringFlag{
	Name:  "ffmpeg",
	Usage: "Path to ffmpeg, used when the carrier is not WAV",
	Value: "ffmpeg",
}

func main() {
	app := &cli.App{
		Name:        "sound-stego-cli",
		Description: "Hide encrypted secrets in 16-bit PCM audio and recover them, without the HTTP server",
		Commands: []*cli.Command{
			{
				Name:  "embed",
				Usage: "Encrypt a secret file and hide it in an audio file",
				Flags: []cli.Flag{
					audioFlag,
					keyFlag,
					ffmpegFlag,
					&cli.StringFlag{Name: "secret", Usage: "Path to the file to hide", Required: true},
					&cli.StringFlag{Name: "out", Usage: "Where to write the stego WAV", Required: true},
				},
				Action: func(c *cli.Context) error {
					upload, err := os.ReadFile(c.String("audio"))
					if err != nil {
						return cli.Exit("Failed to read audio: "+err.Error(), 1)
					}
					secret, err := os.ReadFile(c.String("secret"))
					if err != nil {
						return cli.Exit("Failed to read secret: "+err.Error(), 1)
					}

					carrier, err := transcode.Normalize(c.Context, &transcode.FFmpeg{Path: c.String("ffmpeg")}, upload)
					if err != nil {
						return exitWith(err)
					}

					container, err := stego.Embed(carrier, secret, keyFrom(c))
					if err != nil {
						return exitWith(err)
					}

					if err := os.WriteFile(c.String("out"), container, 0o644); err != nil {
						return cli.Exit("Failed to write output: "+err.Error(), 1)
					}
					log.Printf("Embedded %d bytes into %s", len(secret), c.String("out"))
					return nil
				},
			},
			{
				Name:  "extract",
				Usage: "Recover a secret from a stego WAV",
				Flags: []cli.Flag{
					audioFlag,
					keyFlag,
					&cli.StringFlag{Name: "out", Usage: "Write the secret here instead of stdout"},
				},
				Action: func(c *cli.Context) error {
					container, err := os.ReadFile(c.String("audio"))
					if err != nil {
						return cli.Exit("Failed to read audio: "+err.Error(), 1)
					}

					secret, err := stego.Extract(container, keyFrom(c))
					if err != nil {
						return exitWith(err)
					}

					if out := c.String("out"); out != "" {
						if err := os.WriteFile(out, secret, 0o644); err != nil {
							return cli.Exit("Failed to write output: "+err.Error(), 1)
						}
						log.Printf("Recovered %d bytes into %s", len(secret), out)
						return nil
					}
					_, err = os.Stdout.Write(secret)
					return err
				},
			},
			{
				Name:  "capacity",
				Usage: "Show how large a secret an audio file can hold",
				Flags: []cli.Flag{audioFlag, ffmpegFlag},
				Action: func(c *cli.Context) error {
					upload, err := os.ReadFile(c.String("audio"))
					if err != nil {
						return cli.Exit("Failed to read audio: "+err.Error(), 1)
					}

					carrier, err := transcode.Normalize(c.Context, &transcode.FFmpeg{Path: c.String("ffmpeg")}, upload)
					if err != nil {
						return exitWith(err)
					}

					fmt.Printf("channels:    %d\n", carrier.Channels)
					fmt.Printf("sample rate: %d Hz\n", carrier.SampleRate)
					fmt.Printf("duration:    %s\n", carrier.Duration())
					fmt.Printf("samples:     %d\n", len(carrier.Samples))
					if maxSecret := stego.MaxSecretSize(len(carrier.Samples)); maxSecret >= 0 {
						fmt.Printf("max secret:  %d bytes\n", maxSecret)
					} else {
						fmt.Println("max secret:  carrier too short for any secret")
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
