package main

import "github.com/openmusicplayer/videoinfo/internal/cli"

func main() {
	cli.Execute()
}
